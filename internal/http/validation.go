package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of an aggregated validation report.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func init() {
	// report violations under the json field names clients actually sent
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// fieldMessages maps field+tag pairs to the messages clients see. Login has
// its own password entry so failed logins never disclose the password policy.
var fieldMessages = map[string]string{
	"username/required": "Username is required",
	"email/required":    "Please provide a valid email",
	"email/email":       "Please provide a valid email",
	"password/min":      "Password must be at least 6 characters long",
	"password/required": "Password is required",
	"title/required":    "Title is required",
	"status/oneof":      "Status must be either pending, in-progress, or completed",
	"dueDate/datetime":  "Please provide a valid date",
}

// describeBindingError turns a ShouldBindJSON failure into the aggregated
// {field, message} list. The validator reports every failing field, not just
// the first one. The bool is false for non-validation failures (malformed
// JSON, wrong value types), which get a generic bad-request response.
func describeBindingError(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	report := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"/"+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Invalid value for %s", fe.Field())
		}
		report = append(report, FieldError{Field: fe.Field(), Message: msg})
	}
	return report, true
}
