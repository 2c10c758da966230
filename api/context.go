package api

import (
	"context"
	"errors"
)

type keyType string

const adminSubjectKey keyType = "adminSubject"

// ctxWithAdminSubject adds the authenticated admin's token subject to the context
func ctxWithAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// ctxGetAdminSubject retrieves the authenticated admin's token subject from the context
func ctxGetAdminSubject(ctx context.Context) (string, error) {
	if ctxValue := ctx.Value(adminSubjectKey); ctxValue == nil {
		return "", errors.New("key not found in context")
	} else if valueAsString, ok := ctxValue.(string); !ok {
		return "", errors.New("value is not of type `string`")
	} else {
		return valueAsString, nil
	}
}
