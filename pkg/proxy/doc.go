/*
Package proxy implements a REST API for reading the state of CARIAD vehicles and running control
actions on them.

Clients authenticate with the OAuth token of the vehicle's account:

	GET  /api/1/vehicles/{vin}/vehicle_data
	GET  /api/1/vehicles/{vin}/requests
	POST /api/1/vehicles/{vin}/command/{name}

Command parameters are sent as a JSON object with the keys action, value, spin, temperature and on.
Requests for the same VIN are handled one at a time.
*/
package proxy
