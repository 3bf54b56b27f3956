package errors_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"gorm.io/gorm"

	svcErr "github.com/Hoossayn/hottakes-backend/internal/errors"
)

func TestMap(t *testing.T) {
	assert.NoError(t, svcErr.Map(nil))

	assert.Equal(t, codes.NotFound, svcErr.Code(svcErr.Map(gorm.ErrRecordNotFound)))
	assert.Equal(t, codes.AlreadyExists, svcErr.Code(svcErr.Map(gorm.ErrDuplicatedKey)))
	assert.Equal(t, codes.DeadlineExceeded, svcErr.Code(svcErr.Map(context.DeadlineExceeded)))
	assert.Equal(t, codes.Canceled, svcErr.Code(svcErr.Map(context.Canceled)))
	assert.Equal(t, codes.Internal, svcErr.Code(svcErr.Map(stderrors.New("boom"))))
}

func TestHelpers(t *testing.T) {
	assert.True(t, svcErr.IsNotFound(svcErr.NotFound("user not found")))
	assert.False(t, svcErr.IsNotFound(svcErr.InvalidArgument("bad kind")))

	assert.Equal(t, codes.InvalidArgument, svcErr.Code(svcErr.InvalidArgument("bad kind")))
	assert.True(t, svcErr.IsConflict(svcErr.Conflict("toggle raced")))
}
