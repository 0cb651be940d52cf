// Package envstruct populates configuration structs from environment
// variables using struct tags.
package envstruct

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrEnvNotSet    = errors.New("environment variable not set")
	ErrInvalidValue = errors.New("v must be a pointer to a struct")
)

// Populate fills the string fields of the struct pointed to by v from the
// environment.
//
// lookupEnv has the same signature as [os.LookupEnv]. Fields must be tagged
// with `env:"ENV_VAR"`. When the variable is unset, the `envDefault` tag is
// used as a fallback; without one, ErrEnvNotSet is returned.
func Populate(v any, lookupEnv func(string) (string, bool)) error {
	ptrRef := reflect.ValueOf(v)
	if ptrRef.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: not pointer: %v", ErrInvalidValue, v)
	}
	ref := ptrRef.Elem()
	if ref.Kind() != reflect.Struct {
		return fmt.Errorf("%w: not struct: %v", ErrInvalidValue, v)
	}

	refType := ref.Type()

	var errorList []error

	for i := range refType.NumField() {
		refField := ref.Field(i)
		refTypeField := refType.Field(i)
		tag := refTypeField.Tag

		envVarName, ok := tag.Lookup("env")
		if !ok {
			continue
		}

		if !refField.CanSet() {
			errorList = append(errorList, fmt.Errorf("%w: cannot set field: %s",
				ErrInvalidValue, refTypeField.Name))
			continue
		}

		if refField.Kind() != reflect.String {
			errorList = append(errorList, fmt.Errorf("%w: only strings are supported - field: %s, type: %s, env: %s",
				ErrInvalidValue, refTypeField.Name, refField.Kind().String(), envVarName))
			continue
		}

		val, err := lookupWithFallback(envVarName, tag, lookupEnv)
		if err != nil {
			errorList = append(errorList, err)
			continue
		}

		refField.Set(reflect.ValueOf(val))
	}

	if len(errorList) != 0 {
		return errors.Join(errorList...)
	}

	return nil
}

func lookupWithFallback(
	envVarName string, tag reflect.StructTag, lookupEnv func(string) (string, bool)) (string, error) {
	envVarValue, ok := lookupEnv(envVarName)
	if !ok {
		envVarValue, ok = tag.Lookup("envDefault")
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrEnvNotSet, envVarName)
		}
	}
	return envVarValue, nil
}
