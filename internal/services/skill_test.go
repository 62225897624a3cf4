package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMemberSkillValidation(t *testing.T) {
	svc := NewSkillService(nil, nil, nil)
	ctx := context.Background()

	err := svc.AddMemberSkill(ctx, "m1", "s1", "teaching")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.AddMemberSkill(ctx, "m1", "s1", "")
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.AddMemberSkill(ctx, "m1", "", "offered")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveMemberSkillValidation(t *testing.T) {
	svc := NewSkillService(nil, nil, nil)

	err := svc.RemoveMemberSkill(context.Background(), "m1", "s1", "bogus")
	assert.ErrorIs(t, err, ErrValidation)
}
