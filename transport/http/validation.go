package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/fidena/fidena/core"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeStrict decodes a JSON body rejecting unknown fields and trailing
// data, then runs struct validation. Failures are *core.ValidationError.
func decodeStrict(body []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError(decodeIssue(err))
	}
	if dec.More() {
		return core.NewValidationError(core.Issue{Message: "unexpected data after JSON body"})
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return core.NewValidationError(issuesFrom(verrs)...)
		}
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, core.NewValidationError(core.Issue{Message: "request body too large"})
	}
	return body, nil
}

func decodeIssue(err error) core.Issue {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return core.Issue{Field: typeErr.Field, Message: fmt.Sprintf("expected %s, received %s", typeErr.Type, typeErr.Value)}
	case errors.As(err, &syntaxErr):
		return core.Issue{Message: "malformed JSON"}
	case errors.Is(err, io.EOF):
		return core.Issue{Message: "request body is empty"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return core.Issue{Field: field, Message: "unrecognized key"}
	default:
		return core.Issue{Message: err.Error()}
	}
}

func issuesFrom(verrs validator.ValidationErrors) []core.Issue {
	issues := make([]core.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, core.Issue{Field: fieldPath(fe), Message: issueMessage(fe)})
	}
	return issues
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		return fmt.Sprintf("Must contain at least %s character(s)", fe.Param())
	case "max":
		return fmt.Sprintf("Must contain at most %s character(s)", fe.Param())
	case "len":
		return fmt.Sprintf("Must contain exactly %s character(s)", fe.Param())
	case "oneof", "eq":
		return fmt.Sprintf("Invalid value, expected %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
