package guard_test

import (
	"testing"

	"github.com/jrsteele09/crm-console/guard"
	"github.com/jrsteele09/crm-console/session"
	"github.com/stretchr/testify/require"
)

var requirements = map[string]guard.Requirement{
	"none":              {},
	"roles":             {AllowedRoles: []string{"admin"}},
	"modules":           {AllowedModules: []string{"reports"}},
	"submodules":        {AllowedSubmodules: []string{"hr"}},
	"modules+subs":      {AllowedModules: []string{"reports"}, AllowedSubmodules: []string{"sales"}},
	"everything":        {AllowedRoles: []string{"manager"}, AllowedModules: []string{"users"}, AllowedSubmodules: []string{"bde"}},
	"unknown role only": {AllowedRoles: []string{"nobody"}},
}

func withToken(role string, modules ...session.ModuleGrant) session.Snapshot {
	return session.Snapshot{Token: "t", Role: role, Modules: modules}
}

func TestEvaluate_NoTokenAlwaysRedirectsToLogin(t *testing.T) {
	sessions := []session.Snapshot{
		{},
		{Role: "superadmin"},
		{Role: "admin", Modules: []session.ModuleGrant{session.BareModule("reports")}},
	}
	for name, req := range requirements {
		for _, s := range sessions {
			require.Equal(t, guard.RedirectLogin, guard.Evaluate(s, req), name)
		}
	}
}

func TestEvaluate_SuperAdminBypassesEverything(t *testing.T) {
	for _, role := range []string{"superadmin", "SuperAdmin", "SUPERADMIN"} {
		for name, req := range requirements {
			d := guard.Explain(withToken(role), req)
			require.Equal(t, guard.Allow, d.Verdict, "%s / %s", role, name)
			require.Equal(t, "superadmin", d.Reason)
		}
	}
}

func TestEvaluate_PaddedSuperAdminGetsNoBypass(t *testing.T) {
	s := withToken(" superadmin ")
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{AllowedRoles: []string{"admin"}}))
	require.False(t, guard.CanSeeModule(s, "reports"))
}

func TestEvaluate_RoleGate(t *testing.T) {
	s := withToken("manager")
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{AllowedRoles: []string{"admin"}}))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedRoles: []string{"Manager"}}))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedRoles: []string{"admin", " MANAGER "}}))
}

func TestEvaluate_ModuleGateMixedShapes(t *testing.T) {
	s := withToken("agent", session.Module("", "reports"), session.BareModule("settings"))

	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{"Settings"}}))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{" reports "}}))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{"users", "settings"}}))
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{"users"}}))
}

func TestEvaluate_SubmoduleGate(t *testing.T) {
	s := withToken("agent", session.Module("", "reports", session.Submodule("HR")))

	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{
		AllowedModules:    []string{"reports"},
		AllowedSubmodules: []string{"hr"},
	}))
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{
		AllowedModules:    []string{"reports"},
		AllowedSubmodules: []string{"sales"},
	}))
}

func TestEvaluate_SubmoduleGateBareStrings(t *testing.T) {
	s := withToken("agent", session.Module("", "reports", session.BareSubmodule(" Sales ")))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedSubmodules: []string{"SALES"}}))
}

func TestEvaluate_ModuleAndSubmoduleBothRequired(t *testing.T) {
	// the submodule is granted, but under a module the requirement does not accept
	s := withToken("agent", session.Module("", "profile", session.Submodule("hr")))
	d := guard.Explain(s, guard.Requirement{
		AllowedModules:    []string{"reports"},
		AllowedSubmodules: []string{"hr"},
	})
	require.Equal(t, guard.RedirectUnauthorized, d.Verdict)
	require.Contains(t, d.Reason, "module")
}

func TestEvaluate_SubmoduleOnlyRequirementIgnoresParent(t *testing.T) {
	s := withToken("agent", session.Module("", "profile", session.Submodule("hr")))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedSubmodules: []string{"hr"}}))
}

func TestEvaluate_RoleCheckedBeforeModules(t *testing.T) {
	s := withToken("viewer", session.BareModule("users"))
	d := guard.Explain(s, guard.Requirement{AllowedRoles: []string{"admin"}, AllowedModules: []string{"users"}})
	require.Equal(t, guard.RedirectUnauthorized, d.Verdict)
	require.Contains(t, d.Reason, "role")
}

func TestEvaluate_AuthenticatedWithoutModules(t *testing.T) {
	s := withToken("")
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{}))
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{"dashboard"}}))
	require.Equal(t, guard.RedirectUnauthorized, guard.Evaluate(s, guard.Requirement{AllowedRoles: []string{"admin"}}))
}

func TestEvaluate_DuplicateModulesHarmless(t *testing.T) {
	s := withToken("agent", session.BareModule("reports"), session.Module("x", "Reports"))
	require.Equal(t, guard.Allow, guard.Evaluate(s, guard.Requirement{AllowedModules: []string{"reports"}}))
}

func TestCanSeeModuleAndSubmodule(t *testing.T) {
	s := withToken("manager",
		session.Module("", "reports", session.Submodule("HR")),
		session.BareModule("profile"),
	)

	require.True(t, guard.CanSeeModule(s, "Reports"))
	require.False(t, guard.CanSeeModule(s, "users"))
	require.True(t, guard.CanSeeSubmodule(s, "reports", "hr"))
	require.False(t, guard.CanSeeSubmodule(s, "reports", "bde"))
	require.False(t, guard.CanSeeSubmodule(s, "profile", "hr"))

	super := withToken("superadmin")
	require.True(t, guard.CanSeeModule(super, "anything"))
	require.True(t, guard.CanSeeSubmodule(super, "reports", "bde"))
}

func TestVerdictAndRequirementStrings(t *testing.T) {
	require.Equal(t, "ALLOW", guard.Allow.String())
	require.Equal(t, "REDIRECT_LOGIN", guard.RedirectLogin.String())
	require.Equal(t, "REDIRECT_UNAUTHORIZED", guard.RedirectUnauthorized.String())
	require.Equal(t, "Verdict(9)", guard.Verdict(9).String())

	require.Equal(t, "authenticated", guard.Requirement{}.String())
	require.Equal(t, "modules=reports submodules=HR", guard.Requirement{
		AllowedModules:    []string{"reports"},
		AllowedSubmodules: []string{"HR"},
	}.String())
}
