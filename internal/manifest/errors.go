package manifest

import (
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/starford/rounded/internal/apperr"
)

func errNotObject(what string) error {
	return fmt.Errorf("%w: manifest is %s, want a JSON object", apperr.ErrParse, what)
}

func errNotList(key string, typ jsonparser.ValueType) error {
	return fmt.Errorf("%w: %q is %s, want a list", apperr.ErrValidation, key, typ)
}

func errMalformedList(key string, err error) error {
	return fmt.Errorf("%w: %q: %v", apperr.ErrParse, key, err)
}
