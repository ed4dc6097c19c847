package minio

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestIsNotFound(t *testing.T) {
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
	if !IsNotFound(minio.ErrorResponse{Code: "NoSuchKey"}) {
		t.Error("NoSuchKey should be not-found")
	}
	if IsNotFound(minio.ErrorResponse{Code: "AccessDenied"}) {
		t.Error("AccessDenied is not not-found")
	}
	if IsNotFound(errors.New("dial tcp: refused")) {
		t.Error("plain errors are not not-found")
	}
}
