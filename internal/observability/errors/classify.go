// Package errors maps errors onto low-cardinality classes for metric tags and log fields.
package errors

import (
	"context"
	goerrors "errors"
	"io/fs"
	"net"
	"reflect"
	"strings"

	apperrors "github.com/target/paystream-client/internal/errors"
)

// Classify returns a normalized error class suitable for tagging metrics/logs.
// Client errors report their code (e.g. "transport"). Common causes from the
// standard library get a fixed name; anything else reports its innermost type.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	var netErr net.Error
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, fs.ErrPermission):
		return "permission"
	case goerrors.Is(err, fs.ErrNotExist):
		return "not_exist"
	case goerrors.As(err, &netErr):
		return "network"
	}
	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// typeName renders pkg.Type as pkg_type.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
}
