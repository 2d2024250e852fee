/*
Package document stores and queries the nested status tree assembled from backend fetches.

Values are google.golang.org/protobuf structpb values, so every node is one of null, bool, number,
string, list or struct. Paths are dot-separated key sequences:

	v := doc.Root()
	state, err := document.String(v, "charging.chargingStatus.value.chargingState")
	if errors.Is(err, protocol.ErrNotFound) {
		// the vehicle did not report charging status
	}

A key that is present with an explicit null value resolves successfully to a NullValue, which keeps
"absent" and "null" distinguishable. The empty path resolves to the value it is applied to.
*/
package document
