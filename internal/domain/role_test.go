package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/order-manager/internal/domain"
)

func TestRoleAuthorities(t *testing.T) {
	userAuths := domain.RoleUser.Authorities()
	assert.Contains(t, userAuths, domain.AuthorityOrdersManage)
	assert.NotContains(t, userAuths, domain.AuthorityUsersManage)
	assert.NotContains(t, userAuths, domain.AuthorityProductsManage)

	adminAuths := domain.RoleAdmin.Authorities()
	for _, a := range userAuths {
		assert.Contains(t, adminAuths, a)
	}
	assert.Contains(t, adminAuths, domain.AuthorityUsersManage)
	assert.Contains(t, adminAuths, domain.AuthorityProductsManage)

	assert.Empty(t, domain.Role("MYSTERY").Authorities())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, domain.RoleUser.Valid())
	assert.True(t, domain.RoleAdmin.Valid())
	assert.False(t, domain.Role("MYSTERY").Valid())
	assert.False(t, domain.Role("").Valid())
}
