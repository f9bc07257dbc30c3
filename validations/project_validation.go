package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainProject "github.com/crossforge/xcodemcp/domains/project"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

func ValidateBuildRequest(ctx context.Context, request domainProject.BuildRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ProjectPath, validation.Required),
		validation.Field(&request.Scheme, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
