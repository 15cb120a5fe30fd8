package pdf

import (
	"bytes"
	"context"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/spherical-ai/spherical/libs/pdf-tools/internal/domain"
)

// PermissionPolicy lists what a reader of a protected document may do
// without the owner secret.
type PermissionPolicy struct {
	Print                bool
	Modify               bool
	Annotate             bool
	FillForms            bool
	Extract              bool
	AccessibilityExtract bool
	Assemble             bool
}

// DefaultPermissionPolicy permits printing, annotating, and form filling.
// Modification and every kind of content extraction are denied.
func DefaultPermissionPolicy() PermissionPolicy {
	return PermissionPolicy{
		Print:     true,
		Annotate:  true,
		FillForms: true,
		Assemble:  true,
	}
}

// Flags converts the policy to the permission bitset written into the document.
func (p PermissionPolicy) Flags() model.PermissionFlags {
	flags := model.PermissionsNone
	if p.Print {
		flags |= model.PermissionPrintRev2 | model.PermissionPrintRev3
	}
	if p.Modify {
		flags |= model.PermissionModify
	}
	if p.Annotate {
		flags |= model.PermissionModAnnFillForm
	}
	if p.FillForms {
		flags |= model.PermissionFillRev3
	}
	if p.Extract {
		flags |= model.PermissionExtract
	}
	if p.AccessibilityExtract {
		flags |= model.PermissionExtractRev3
	}
	if p.Assemble {
		flags |= model.PermissionAssembleRev3
	}
	return flags
}

// Protector encrypts documents.
type Protector struct {
	policy PermissionPolicy
}

// ProtectorOption configures a Protector.
type ProtectorOption func(*Protector)

// WithPermissionPolicy replaces the default permission policy.
func WithPermissionPolicy(p PermissionPolicy) ProtectorOption {
	return func(pr *Protector) {
		pr.policy = p
	}
}

// NewProtector creates a Protector using DefaultPermissionPolicy unless overridden.
func NewProtector(opts ...ProtectorOption) *Protector {
	p := &Protector{policy: DefaultPermissionPolicy()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Protect encrypts doc with AES-256, using secret as both the user and the
// owner password.
func (p *Protector) Protect(ctx context.Context, doc *Document, secret string) (*Output, error) {
	if doc == nil {
		return nil, domain.ValidationError("Please upload a PDF file", domain.ErrMissingDocument)
	}
	if strings.TrimSpace(secret) == "" {
		return nil, domain.ValidationError("File and password are required", domain.ErrMissingSecret)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conf := newConfiguration()
	conf.UserPW = secret
	conf.OwnerPW = secret
	conf.EncryptUsingAES = true
	conf.EncryptKeyLength = 256
	conf.Permissions = p.policy.Flags()

	var buf bytes.Buffer
	if err := api.Encrypt(doc.reader(), &buf, conf); err != nil {
		return nil, domain.ProcessingError("Failed to protect PDF", err)
	}

	return &Output{data: buf.Bytes(), pageCount: doc.PageCount()}, nil
}
