package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chefpass/pkg/domain-errors"
)

func TestNextAcceptedTransitions(t *testing.T) {
	cases := []struct {
		name   string
		from   Status
		action Action
		role   Role
		want   Status
	}{
		{"owner re-request while queued", StatusQueued, ActionRequest, RoleOwner, StatusQueued},
		{"owner re-request while printing", StatusPrinting, ActionRequest, RoleOwner, StatusPrinting},
		{"approver approves queued", StatusQueued, ActionApprove, RoleApprover, StatusPrinting},
		{"approver denies queued", StatusQueued, ActionDeny, RoleApprover, StatusDenied},
		{"agent completes printing", StatusPrinting, ActionMarkPrinted, RoleAgent, StatusPrinted},
		{"approver completes printing", StatusPrinting, ActionMarkPrinted, RoleApprover, StatusPrinted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Next(tc.from, tc.action, tc.role)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextRejectedTransitions(t *testing.T) {
	cases := []struct {
		name   string
		from   Status
		action Action
		role   Role
	}{
		{"owner cannot approve", StatusQueued, ActionApprove, RoleOwner},
		{"owner cannot deny", StatusQueued, ActionDeny, RoleOwner},
		{"agent cannot approve", StatusQueued, ActionApprove, RoleAgent},
		{"cannot approve while printing", StatusPrinting, ActionApprove, RoleApprover},
		{"cannot deny while printing", StatusPrinting, ActionDeny, RoleApprover},
		{"cannot complete from queued", StatusQueued, ActionMarkPrinted, RoleAgent},
		{"printed is terminal for approve", StatusPrinted, ActionApprove, RoleApprover},
		{"printed is terminal for request", StatusPrinted, ActionRequest, RoleOwner},
		{"printed is terminal for completion", StatusPrinted, ActionMarkPrinted, RoleAgent},
		{"denied is terminal for approve", StatusDenied, ActionApprove, RoleApprover},
		{"denied is terminal for request", StatusDenied, ActionRequest, RoleOwner},
		{"owner cannot complete", StatusPrinting, ActionMarkPrinted, RoleOwner},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Next(tc.from, tc.action, tc.role)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusPrinting.Terminal())
	assert.True(t, StatusPrinted.Terminal())
	assert.True(t, StatusDenied.Terminal())
}
