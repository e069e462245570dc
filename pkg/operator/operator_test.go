package operator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/inventory-tracker/pkg/operator"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, operator.Default, operator.Resolve(ctx, ""))
	assert.Equal(t, "alice", operator.Resolve(operator.NewContext(ctx, "alice"), ""))
	assert.Equal(t, "bob", operator.Resolve(ctx, "bob"))
	assert.Equal(t, "alice", operator.Resolve(operator.NewContext(ctx, "alice"), "mallory"))
	assert.Equal(t, operator.Default, operator.Resolve(operator.NewContext(ctx, ""), ""))
}
