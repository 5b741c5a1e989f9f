package evaluation

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Wicketkeeper Batsman", RoleKeeper},
		{"WICKET-KEEPER", RoleKeeper},
		{"wk", RoleKeeper},
		{"All Rounder", RoleAllRounder},
		{"Batting Allrounder", RoleAllRounder},
		{"AR", RoleAllRounder},
		{"Fast Bowler", RoleBowler},
		{"bowling allrounder", RoleAllRounder},
		{"Batsman", RoleBatter},
		{"Top Order Batter", RoleBatter},
		{"", RoleBatter},
		{"Mystery Spinner", RoleBatter},
		{"  wk  ", RoleKeeper},
	}
	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("NormalizeRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
