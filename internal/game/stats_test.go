package game

import "testing"

func TestDeriveStatsStrengthZeroTraits(t *testing.T) {
	s := DeriveStats(FamilyStrength, 400, Traits{})

	if s.DamageMult != 80 {
		t.Errorf("Expected DamageMult 80, got %d", s.DamageMult)
	}
	if s.MoveDuration != 400 {
		t.Errorf("Expected MoveDuration 400, got %d", s.MoveDuration)
	}
	if s.ArcDeg != 30 {
		t.Errorf("Expected ArcDeg 30, got %d", s.ArcDeg)
	}
	if s.KnockbackPct != 150 {
		t.Errorf("Expected KnockbackPct 150, got %d", s.KnockbackPct)
	}
	if s.SwingMs != 400 {
		t.Errorf("Expected SwingMs 400, got %d", s.SwingMs)
	}
	if s.LungeSpeed != 10 {
		t.Errorf("Expected LungeSpeed 10, got %d", s.LungeSpeed)
	}
}

func TestDeriveStatsFamilies(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		base   int
		traits Traits
		want   MoveStats
	}{
		{
			name:   "strength",
			family: FamilyStrength,
			base:   400,
			traits: Traits{10, 20, 30, 4},
			want: MoveStats{
				DamageMult: 100, MoveDuration: 500, SwingMs: 450, LungeSpeed: 30,
				ArcDeg: 60, KnockbackPct: 170,
			},
		},
		{
			name:   "agility",
			family: FamilyAgility,
			base:   250,
			traits: Traits{10, 4, 5, 3},
			want: MoveStats{
				ComboWindow: 250, DamageMult: 70, LungeSpeed: 270, MoveDuration: 270,
				LandingBuffer: 90, SlowPct: 16, SlowDuration: 260,
			},
		},
		{
			name:   "intellect",
			family: FamilyIntellect,
			base:   350,
			traits: Traits{2, 5, 1, 10},
			want: MoveStats{
				TargetingTime: 550, Radius: 13, DamageMult: 64, ChannelPower: 110,
				MoveDuration: 360, WeakenPct: 15, WeakenDuration: 700,
			},
		},
		{
			name:   "heal",
			family: FamilyHeal,
			base:   350,
			traits: Traits{10, 0, 20, 5},
			want:   MoveStats{ChannelPower: 35, DamageMult: 140, MoveDuration: 420},
		},
		{
			name:   "heal duration floors at 50",
			family: FamilyHeal,
			base:   350,
			traits: Traits{0, 500, 0, 0},
			want:   MoveStats{ChannelPower: 500, DamageMult: 100, MoveDuration: 50},
		},
		{
			name:   "negative traits clamp to zero",
			family: FamilyAgility,
			base:   250,
			traits: Traits{-10, -10, -10, -10},
			want: MoveStats{
				ComboWindow: 200, DamageMult: 60, LungeSpeed: 250, MoveDuration: 250,
				LandingBuffer: 80, SlowPct: 10, SlowDuration: 200,
			},
		},
		{
			name:   "unknown family keeps base",
			family: Family(9),
			base:   300,
			traits: Traits{5, 5, 5, 5},
			want:   MoveStats{DamageMult: 100, MoveDuration: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStats(tt.family, tt.base, tt.traits)
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestArcDegreesStayInRange(t *testing.T) {
	for _, t3 := range []int{-100, 0, 1, 100, 330, 331, 5000} {
		s := DeriveStats(FamilyStrength, 400, Traits{0, 0, t3, 0})
		if s.ArcDeg < 30 || s.ArcDeg > 360 {
			t.Errorf("t3=%d: expected arc in [30, 360], got %d", t3, s.ArcDeg)
		}
	}
}

func TestClampLunge(t *testing.T) {
	tests := []struct {
		lunge int
		haste float64
		want  float64
	}{
		{10, 1, 10},
		{250, 2, 500},
		{400, 3, 500},
		{-20, 1, 0},
		{100, 0.5, 50},
	}

	for _, tt := range tests {
		got := ClampLunge(tt.lunge, tt.haste)
		if got != tt.want {
			t.Errorf("ClampLunge(%d, %v): expected %v, got %v", tt.lunge, tt.haste, tt.want, got)
		}
		if got < 0 || got > MaxLungeSpeed {
			t.Errorf("ClampLunge(%d, %v) out of range: %v", tt.lunge, tt.haste, got)
		}
	}
}

func TestBaseMoveDuration(t *testing.T) {
	tests := []struct {
		family Family
		button Button
		want   int
	}{
		{FamilyStrength, ButtonA, 400},
		{FamilyAgility, ButtonB, 250},
		{FamilyIntellect, ButtonA, 350},
		{FamilyHeal, ButtonA, 350},
		{Family(7), ButtonA, 300},
		{FamilyStrength, ButtonAB, 550},
		{FamilyAgility, ButtonAB, 400},
	}

	for _, tt := range tests {
		if got := BaseMoveDuration(tt.family, tt.button); got != tt.want {
			t.Errorf("%s/%s: expected %d, got %d", tt.family, tt.button, tt.want, got)
		}
	}
}

func TestMoveDamage(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		mult   int
		amp    float64
		want   int
	}{
		{"strength base", FamilyStrength, 80, 1, 12},
		{"agility base", FamilyAgility, 60, 1, 6},
		{"floors at one", FamilyIntellect, 1, 1, 1},
		{"amp doubles", FamilyStrength, 100, 2, 30},
		{"amp halves", FamilyAgility, 100, 0.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveDamage(tt.family, MoveStats{DamageMult: tt.mult}, tt.amp)
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAgilityReach(t *testing.T) {
	if got := AgilityReach(250, 250); got != 62 {
		t.Errorf("Expected reach 62, got %d", got)
	}
	if got := AgilityReach(0, 250); got != 1 {
		t.Errorf("Expected reach floor 1, got %d", got)
	}
}

func TestParseMoveDescriptor(t *testing.T) {
	if _, err := ParseMoveDescriptor([]int{0, 1, 2, 3, 4, 5}); err != ErrInvalidMoveDescriptor {
		t.Errorf("Expected ErrInvalidMoveDescriptor for short input, got %v", err)
	}
	if _, err := ParseMoveDescriptor([]int{8, 0, 0, 0, 0, 0, 0}); err != ErrInvalidMoveDescriptor {
		t.Errorf("Expected ErrInvalidMoveDescriptor for bad family, got %v", err)
	}

	d, err := ParseMoveDescriptor([]int{1, 2, 3, 4, 5, 2, 3, 99})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d.Family != FamilyAgility || d.Traits != (Traits{2, 3, 4, 5}) || d.Element != ElementFire || d.AnimID != 3 {
		t.Errorf("Unexpected descriptor %+v", d)
	}
}

func TestDeriveStatsMonotonicInTraits(t *testing.T) {
	fields := map[string]func(MoveStats) int{
		"DamageMult":     func(s MoveStats) int { return s.DamageMult },
		"MoveDuration":   func(s MoveStats) int { return s.MoveDuration },
		"SwingMs":        func(s MoveStats) int { return s.SwingMs },
		"LungeSpeed":     func(s MoveStats) int { return s.LungeSpeed },
		"ArcDeg":         func(s MoveStats) int { return s.ArcDeg },
		"KnockbackPct":   func(s MoveStats) int { return s.KnockbackPct },
		"ComboWindow":    func(s MoveStats) int { return s.ComboWindow },
		"LandingBuffer":  func(s MoveStats) int { return s.LandingBuffer },
		"SlowPct":        func(s MoveStats) int { return s.SlowPct },
		"SlowDuration":   func(s MoveStats) int { return s.SlowDuration },
		"Radius":         func(s MoveStats) int { return s.Radius },
		"TargetingTime":  func(s MoveStats) int { return s.TargetingTime },
		"ChannelPower":   func(s MoveStats) int { return s.ChannelPower },
		"WeakenPct":      func(s MoveStats) int { return s.WeakenPct },
		"WeakenDuration": func(s MoveStats) int { return s.WeakenDuration },
	}

	tests := []struct {
		family Family
		trait  int
		fed    []string
	}{
		{FamilyStrength, 0, []string{"DamageMult", "MoveDuration", "SwingMs"}},
		{FamilyStrength, 1, []string{"LungeSpeed"}},
		{FamilyStrength, 2, []string{"ArcDeg"}},
		{FamilyStrength, 3, []string{"KnockbackPct"}},
		{FamilyAgility, 0, []string{"ComboWindow", "DamageMult", "MoveDuration"}},
		{FamilyAgility, 1, []string{"LungeSpeed"}},
		{FamilyAgility, 2, []string{"LandingBuffer"}},
		{FamilyAgility, 3, []string{"SlowPct", "SlowDuration"}},
		{FamilyIntellect, 0, []string{"DamageMult", "ChannelPower", "MoveDuration"}},
		{FamilyIntellect, 1, []string{"Radius"}},
		{FamilyIntellect, 2, []string{"TargetingTime"}},
		{FamilyIntellect, 3, []string{"WeakenPct", "WeakenDuration"}},
		{FamilyHeal, 0, []string{"ChannelPower", "MoveDuration"}},
		{FamilyHeal, 1, []string{"ChannelPower"}},
		{FamilyHeal, 2, []string{"ChannelPower", "DamageMult", "MoveDuration"}},
		{FamilyHeal, 3, []string{"ChannelPower"}},
	}

	for _, tt := range tests {
		for _, name := range tt.fed {
			get := fields[name]
			prev := get(DeriveStats(tt.family, 300, Traits{}))
			for v := 1; v <= 400; v++ {
				var traits Traits
				traits[tt.trait] = v
				cur := get(DeriveStats(tt.family, 300, traits))
				if cur < prev {
					t.Errorf("%s t%d=%d: expected %s >= %d, got %d", tt.family, tt.trait+1, v, name, prev, cur)
					break
				}
				prev = cur
			}
		}
	}
}
