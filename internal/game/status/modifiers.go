package status

// DamageDealtMult returns the product of all active damage-dealt multipliers.
// Effects with an unset (zero) multiplier contribute 1.
//
// Postcondition: Returns > 0 for any well-formed effect set.
func DamageDealtMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.DamageDealtMult != 0 {
			m *= ae.Def.DamageDealtMult
		}
	}
	return m
}

// DealtDebuffMult returns the damage-dealt product over debuff effects only.
// Damage resolution applies debuff and buff contributions at different steps.
func DealtDebuffMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.Kind == KindDebuff && ae.Def.DamageDealtMult != 0 {
			m *= ae.Def.DamageDealtMult
		}
	}
	return m
}

// DealtBuffMult returns the damage-dealt product over buff effects only.
func DealtBuffMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.Kind == KindBuff && ae.Def.DamageDealtMult != 0 {
			m *= ae.Def.DamageDealtMult
		}
	}
	return m
}

// DamageTakenMult returns the product of all active damage-taken multipliers.
func DamageTakenMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.DamageTakenMult != 0 {
			m *= ae.Def.DamageTakenMult
		}
	}
	return m
}

// HealingTakenMult returns the product of all active healing-taken multipliers.
func HealingTakenMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.HealingTakenMult != 0 {
			m *= ae.Def.HealingTakenMult
		}
	}
	return m
}

// SpeedMult returns the product of all active movement speed multipliers.
func SpeedMult(s *ActiveSet) float64 {
	m := 1.0
	for _, ae := range s.effects {
		if ae.Def.SpeedMult != 0 {
			m *= ae.Def.SpeedMult
		}
	}
	return m
}

// MissChance returns the highest percent miss chance among active effects.
//
// Postcondition: Returns a value in [0, 100].
func MissChance(s *ActiveSet) int {
	best := 0
	for _, ae := range s.effects {
		if ae.Def.MissChance > best {
			best = ae.Def.MissChance
		}
	}
	return best
}

// ConsumeBlock consumes one hit absorption from the first blocking effect and
// reports whether a hit was absorbed. The effect is removed once its last
// absorption is spent.
//
// Postcondition: returns true iff an absorption was consumed.
func ConsumeBlock(s *ActiveSet) bool {
	for id, ae := range s.effects {
		if ae.BlocksLeft > 0 {
			ae.BlocksLeft--
			if ae.BlocksLeft == 0 {
				delete(s.effects, id)
			}
			return true
		}
	}
	return false
}

// InterruptsOnDamage reports whether any active effect breaks the afflicted
// actor's in-progress cast when it takes damage.
func InterruptsOnDamage(s *ActiveSet) bool {
	for _, ae := range s.effects {
		if ae.Def.InterruptOnDamage {
			return true
		}
	}
	return false
}
