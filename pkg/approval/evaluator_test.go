package approval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/roomflow/pkg/approval"
	"github.com/aretw0/roomflow/pkg/domain"
)

var fullCaps = approval.Capabilities{AutoApprove: true, VIP: true}

func window(hours float64) domain.TimeWindow {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return domain.TimeWindow{
		Start: start,
		End:   start.Add(time.Duration(hours * float64(time.Hour))),
	}
}

// eligibleContext is an otherwise-perfect auto-approval profile: one
// eligible resource, two hours, no services.
func eligibleContext() domain.Context {
	return domain.Context{
		Tenant:        "acme",
		ReservationID: "res-1",
		RequesterRole: domain.RoleStudent,
		BookingKind:   domain.KindStandard,
		TimeWindow:    window(2),
		SelectedResources: []domain.Resource{
			{
				ID:          "room-101",
				AutoApprove: true,
				Limits:      map[string]domain.HourLimits{"student": {MaxHours: 4}},
			},
		},
	}
}

func TestEvaluate_Eligible(t *testing.T) {
	dec := approval.Evaluate(eligibleContext(), fullCaps, approval.StaticLimits{})
	assert.True(t, dec.Eligible)
	assert.Empty(t, dec.Reason)
}

func TestEvaluate_LegacyMigrationWinsPrecedence(t *testing.T) {
	// An otherwise-perfect profile must still be rejected, citing legacy
	// migration, never silently auto-approving.
	c := eligibleContext()
	c.MigratedFromLegacy = true

	dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
	assert.False(t, dec.Eligible)
	assert.Equal(t, approval.ReasonLegacyMigration, dec.Reason)
}

func TestEvaluate_TenantPolicy(t *testing.T) {
	t.Run("auto-approval disabled", func(t *testing.T) {
		dec := approval.Evaluate(eligibleContext(), approval.Capabilities{}, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonTenantPolicy, dec.Reason)
	})

	t.Run("VIP with services defers to manual flow", func(t *testing.T) {
		c := eligibleContext()
		c.BookingKind = domain.KindVIP
		c.RequestedServices = map[domain.Service]bool{domain.ServiceStaff: true}

		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonTenantPolicy, dec.Reason)
	})

	t.Run("VIP without services proceeds", func(t *testing.T) {
		c := eligibleContext()
		c.BookingKind = domain.KindVIP
		c.SelectedResources[0].Limits = map[string]domain.HourLimits{"studentVIP": {MaxHours: 4}}

		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.True(t, dec.Eligible)
	})
}

func TestEvaluate_DurationBoundary(t *testing.T) {
	t.Run("exactly at the max is eligible", func(t *testing.T) {
		c := eligibleContext()
		c.TimeWindow = window(4)
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.True(t, dec.Eligible, "boundary is inclusive")
	})

	t.Run("one minute above is not", func(t *testing.T) {
		c := eligibleContext()
		c.TimeWindow = window(4)
		c.TimeWindow.End = c.TimeWindow.End.Add(time.Minute)
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonDurationExceeded, dec.Reason)
	})

	t.Run("walk-in below the minimum is not", func(t *testing.T) {
		c := eligibleContext()
		c.BookingKind = domain.KindWalkIn
		c.SelectedResources[0].Limits = map[string]domain.HourLimits{
			"studentWalkIn": {MaxHours: 4, MinHours: 1},
		}
		c.TimeWindow = window(0.5)
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonDurationExceeded, dec.Reason)
	})

	t.Run("fallback table applies when resource has no entry", func(t *testing.T) {
		c := eligibleContext()
		c.SelectedResources[0].Limits = nil
		c.TimeWindow = window(3)
		limits := approval.StaticLimits{
			Fallback: map[domain.Role]domain.HourLimits{domain.RoleStudent: {MaxHours: 2}},
		}
		dec := approval.Evaluate(c, fullCaps, limits)
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonDurationExceeded, dec.Reason)
	})

	t.Run("no limits anywhere means unlimited", func(t *testing.T) {
		c := eligibleContext()
		c.SelectedResources[0].Limits = nil
		c.TimeWindow = window(100)
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.True(t, dec.Eligible)
	})
}

func TestEvaluate_ResourceFlags(t *testing.T) {
	t.Run("missing auto-approve flag rejects non-walk-ins", func(t *testing.T) {
		c := eligibleContext()
		c.SelectedResources[0].AutoApprove = false
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonResourceFlag, dec.Reason)
	})

	t.Run("walk-ins bypass the flag check", func(t *testing.T) {
		c := eligibleContext()
		c.BookingKind = domain.KindWalkIn
		c.SelectedResources[0].AutoApprove = false
		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.True(t, dec.Eligible)
	})

	t.Run("pair must both be pair-bookable", func(t *testing.T) {
		c := eligibleContext()
		second := c.SelectedResources[0]
		second.ID = "room-102"
		second.PairAutoApprove = true
		c.SelectedResources = append(c.SelectedResources, second)

		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonPairRule, dec.Reason)

		c.SelectedResources[0].PairAutoApprove = true
		dec = approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.True(t, dec.Eligible)
	})

	t.Run("three resources never auto-approve", func(t *testing.T) {
		c := eligibleContext()
		for _, id := range []string{"room-102", "room-103"} {
			r := c.SelectedResources[0]
			r.ID = id
			r.PairAutoApprove = true
			c.SelectedResources = append(c.SelectedResources, r)
		}
		c.SelectedResources[0].PairAutoApprove = true

		dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
		assert.False(t, dec.Eligible)
		assert.Equal(t, approval.ReasonPairRule, dec.Reason)
	})
}

func TestEvaluate_ServiceRules(t *testing.T) {
	cases := []struct {
		name    string
		kind    domain.BookingKind
		service domain.Service
		reject  bool
	}{
		{"setup always rejects", domain.KindStandard, domain.ServiceSetup, true},
		{"catering always rejects", domain.KindStandard, domain.ServiceCatering, true},
		{"security always rejects", domain.KindStandard, domain.ServiceSecurity, true},
		{"equipment rejects standard", domain.KindStandard, domain.ServiceEquipment, true},
		{"equipment allowed for walk-in", domain.KindWalkIn, domain.ServiceEquipment, false},
		{"staff does not reject", domain.KindStandard, domain.ServiceStaff, false},
		{"cleaning does not reject", domain.KindStandard, domain.ServiceCleaning, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := eligibleContext()
			c.BookingKind = tc.kind
			if tc.kind == domain.KindWalkIn {
				c.SelectedResources[0].Limits = map[string]domain.HourLimits{
					"studentWalkIn": {MaxHours: 4},
				}
			}
			c.RequestedServices = map[domain.Service]bool{tc.service: true}

			dec := approval.Evaluate(c, fullCaps, approval.StaticLimits{})
			if tc.reject {
				assert.False(t, dec.Eligible)
				assert.Equal(t, approval.ReasonServiceRequested, dec.Reason)
			} else {
				assert.True(t, dec.Eligible)
			}
		})
	}
}

func TestStaticLimits_MostRestrictiveAcrossResources(t *testing.T) {
	limits := approval.StaticLimits{}
	resolved := limits.Resolve(domain.RoleFaculty, domain.KindStandard, []domain.Resource{
		{Limits: map[string]domain.HourLimits{"faculty": {MaxHours: 8, MinHours: 1}}},
		{Limits: map[string]domain.HourLimits{"faculty": {MaxHours: 3, MinHours: 2}}},
	})
	assert.Equal(t, 3.0, resolved.MaxHours, "lowest max wins")
	assert.Equal(t, 2.0, resolved.MinHours, "highest min wins")
}
