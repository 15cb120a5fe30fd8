package pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

func TestDefaultPermissionPolicy_Flags(t *testing.T) {
	flags := DefaultPermissionPolicy().Flags()

	granted := map[string]model.PermissionFlags{
		"print":      model.PermissionPrintRev2,
		"print hi":   model.PermissionPrintRev3,
		"annotate":   model.PermissionModAnnFillForm,
		"fill forms": model.PermissionFillRev3,
		"assemble":   model.PermissionAssembleRev3,
	}
	for name, bit := range granted {
		assert.NotZero(t, flags&bit, "%s should be granted", name)
	}

	denied := map[string]model.PermissionFlags{
		"modify":        model.PermissionModify,
		"extract":       model.PermissionExtract,
		"accessibility": model.PermissionExtractRev3,
	}
	for name, bit := range denied {
		assert.Zero(t, flags&bit, "%s should be denied", name)
	}
}

func TestPermissionPolicy_NothingGranted(t *testing.T) {
	assert.Equal(t, model.PermissionsNone, PermissionPolicy{}.Flags())
	assert.Equal(t, model.PermissionFlags(0xF0C3), PermissionPolicy{}.Flags())
}

func TestProtect_RequiresSecret(t *testing.T) {
	doc := openFixture(t, [2]int{100, 100})

	for _, secret := range []string{"", "   "} {
		_, err := NewProtector().Protect(context.Background(), doc, secret)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrMissingSecret))
	}

	_, err := NewProtector().Protect(context.Background(), nil, "secret")
	assert.True(t, errors.Is(err, domain.ErrMissingDocument))
}

func TestProtect_NeedsSecretToOpen(t *testing.T) {
	doc := openFixture(t, [2]int{100, 100}, [2]int{120, 100})

	out, err := NewProtector().Protect(context.Background(), doc, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 2, out.PageCount())

	_, err = Open(out.Bytes())
	assert.Error(t, err, "opening without the secret should fail")

	conf := newConfiguration()
	conf.UserPW = "s3cret"
	n, err := api.PageCount(bytes.NewReader(out.Bytes()), conf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProtect_AlternatePolicy(t *testing.T) {
	p := NewProtector(WithPermissionPolicy(PermissionPolicy{Print: true}))
	assert.Equal(t, model.PermissionsNone|model.PermissionPrintRev2|model.PermissionPrintRev3, p.policy.Flags())
}
