package abstraction

import (
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	g := HeadsUpHoldem(200)

	tests := []struct {
		name    string
		write   func(path string) error
		wantErr bool
	}{
		{
			name:  "valid example",
			write: SaveExample,
		},
		{
			name: "missing file",
			write: func(path string) error {
				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "abstraction.hcl")
			if tt.name != "missing file" {
				if err := tt.write(path); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			ba, err := LoadFile(path, g)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if ba.Limit {
				t.Errorf("Limit = true, want false")
			}
			if len(ba.MaxBets) != 4 {
				t.Errorf("MaxBets = %v, want len 4", ba.MaxBets)
			}
			if ba.CloseToAllInFrac != 0.9 {
				t.Errorf("CloseToAllInFrac = %v, want 0.9", ba.CloseToAllInFrac)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	g := HeadsUpHoldem(200)

	tests := []struct {
		name    string
		ba      BettingAbstraction
		wantErr bool
	}{
		{
			name: "valid symmetric",
			ba:   BettingAbstraction{MaxBets: PerStreetInt{3, 3, 3, 3}},
		},
		{
			name:    "asymmetric target player out of range",
			ba:      BettingAbstraction{Asymmetric: true, TargetPlayer: 5, OurMaxBets: PerStreetInt{3}, OppMaxBets: PerStreetInt{3}},
			wantErr: true,
		},
		{
			name:    "empty max bets",
			ba:      BettingAbstraction{},
			wantErr: true,
		},
		{
			name:    "close to all in frac out of range",
			ba:      BettingAbstraction{MaxBets: PerStreetInt{3, 3, 3, 3}, CloseToAllInFrac: 1.5},
			wantErr: true,
		},
		{
			name:    "negative bet size multiplier",
			ba:      BettingAbstraction{MaxBets: PerStreetInt{3, 3, 3, 3}, BetSizeMultiplier: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ba.Validate(g)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleMaxBets(t *testing.T) {
	symmetric := BettingAbstraction{MaxBets: PerStreetInt{3, 3}}
	if got := symmetric.RoleMaxBets(0); got[0] != 3 {
		t.Errorf("RoleMaxBets(0) = %v, want first element 3", got)
	}

	asym := BettingAbstraction{
		Asymmetric: true,
		OurMaxBets: PerStreetInt{2, 2},
		OppMaxBets: PerStreetInt{4, 4},
	}
	if got := asym.RoleMaxBets(0); got[0] != 2 {
		t.Errorf("RoleMaxBets(0) = %v, want our table (2)", got)
	}
	if got := asym.RoleMaxBets(1); got[0] != 4 {
		t.Errorf("RoleMaxBets(1) = %v, want opp table (4)", got)
	}
}
