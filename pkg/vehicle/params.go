package vehicle

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carnet-go/carnet/internal/log"
	"github.com/carnet-go/carnet/pkg/protocol"
)

// Argument constraints of the control actions.
type (
	chargerCurrentArgs struct {
		Amps int `arg:"amps" validate:"min=1,max=255"`
	}
	startStopArgs struct {
		Action string `arg:"action" validate:"oneof=start stop"`
	}
	chargingSettingArgs struct {
		Setting string `arg:"setting" validate:"oneof=reduced maximum"`
	}
	temperatureArgs struct {
		Celsius float64 `arg:"temperature" validate:"gte=15.5,lte=30"`
	}
	lockArgs struct {
		Action string `arg:"action" validate:"oneof=lock unlock"`
		SPIN   string `arg:"spin" validate:"len=4,number"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("arg"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// checkArgs validates args and converts the first violation into a protocol.ArgumentError.
func checkArgs(action string, args interface{}) error {
	err := validate.Struct(args)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	argErr := &protocol.ArgumentError{
		Action:   action,
		Argument: fe.Field(),
		Value:    fe.Value(),
		Reason:   describe(fe),
	}
	log.Error("%s", argErr)
	return argErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "number":
		return "must contain only digits"
	}
	return fmt.Sprintf("failed %s constraint", fe.Tag())
}
