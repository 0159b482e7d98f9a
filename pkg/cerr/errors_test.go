package cerr_test

import (
	"errors"
	"testing"

	"github.com/cubedata/segcache/pkg/cerr"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorUnwrapAndCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := cerr.NewProviderError(cause, cerr.ErrorCodeProviderFailure, "lru", "put", "put failed").
		WithDetail("headerID", "abc123")

	require.True(t, cerr.IsProviderError(err))
	require.ErrorIs(t, err, cause)

	pe, ok := cerr.AsProviderError(err)
	require.True(t, ok)
	require.Equal(t, "lru", pe.Provider())
	require.Equal(t, "put", pe.Operation())
	require.Equal(t, cerr.ErrorCodeProviderFailure, cerr.GetErrorCode(err))
	require.Equal(t, "abc123", cerr.GetErrorDetails(err)["headerID"])
}

func TestTimeoutErrorFields(t *testing.T) {
	err := cerr.NewTimeoutError("disk", cerr.TimeoutKindWrite, "250ms")
	require.True(t, cerr.IsTimeoutError(err))

	te, ok := cerr.AsTimeoutError(err)
	require.True(t, ok)
	require.Equal(t, cerr.TimeoutKindWrite, te.Kind())
	require.Equal(t, "disk", te.Provider())
	require.Equal(t, "250ms", te.Budget())
	require.Equal(t, cerr.ErrorCodeTimeout, te.Code())
}

func TestInvariantErrorThreadOwnership(t *testing.T) {
	err := cerr.NewThreadOwnershipError("locate", "manager-1", "caller-7")
	require.True(t, cerr.IsInvariantError(err))

	ie, ok := cerr.AsInvariantError(err)
	require.True(t, ok)
	require.Equal(t, "locate", ie.Operation())

	expected, observed := ie.Owners()
	require.Equal(t, "manager-1", expected)
	require.Equal(t, "caller-7", observed)
}

func TestUnconstrainedColumnError(t *testing.T) {
	err := cerr.NewUnconstrainedColumnError("[Store].[State]")
	require.True(t, cerr.IsInvariantError(err))
	require.Equal(t, "[Store].[State]", cerr.GetErrorDetails(err)["columnExpression"])
}

func TestValidationErrorHelpers(t *testing.T) {
	err := cerr.NewRequiredFieldError("dataDir")
	require.True(t, cerr.IsValidationError(err))

	ve, ok := cerr.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, "dataDir", ve.Field())
	require.Equal(t, "required", ve.Rule())
}
