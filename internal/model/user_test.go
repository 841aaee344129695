package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleStudent.CanBookLab())
	assert.True(t, RoleTeacher.CanBookLab())
	assert.True(t, RoleFaculty.CanBookLab())
	assert.False(t, RoleEmployee.CanBookLab())
	assert.False(t, RoleAdmin.CanBookLab())

	assert.True(t, RoleAdmin.CanApprove())
	assert.True(t, RoleFaculty.CanApprove())
	assert.False(t, RoleStudent.CanApprove())
	assert.False(t, RoleTeacher.CanApprove())
	assert.False(t, RoleEmployee.CanApprove())

	assert.True(t, RoleAdmin.Staff())
	assert.True(t, RoleFaculty.Staff())
	assert.False(t, RoleStudent.Staff())

	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("WIZARD").Valid())
	assert.False(t, Role("").Valid())
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentScheduled.Terminal())
	assert.False(t, AppointmentApproved.Terminal())
	assert.False(t, AppointmentCheckedIn.Terminal())
	assert.True(t, AppointmentCompleted.Terminal())
	assert.True(t, AppointmentCancelled.Terminal())
}
