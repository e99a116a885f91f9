package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

// DisabledStore stands in when object storage is switched off.
type DisabledStore struct{}

var errDisabled = fmt.Errorf("%w: object storage is disabled", model.ErrObjectStorage)

func (DisabledStore) Put(context.Context, string, io.Reader, int64, string) error { return errDisabled }
func (DisabledStore) Remove(context.Context, string) error                        { return errDisabled }
func (DisabledStore) Ping(context.Context) error                                  { return nil }

func (DisabledStore) PresignedURL(context.Context, string, time.Duration) (string, error) {
	return "", errDisabled
}
