package component

// PositionCodec is the canonical VectorCodec for dense Position storage.
func PositionCodec() VectorCodec[Position] {
	return VectorCodec[Position]{
		Decompose: func(p Position) (float64, float64, float64) { return p.X, p.Y, p.Z },
		Compose:   func(x, y, z float64) Position { return Position{X: x, Y: y, Z: z} },
	}
}

// VelocityCodec is the canonical VectorCodec for dense Velocity storage.
func VelocityCodec() VectorCodec[Velocity] {
	return VectorCodec[Velocity]{
		Decompose: func(v Velocity) (float64, float64, float64) { return v.DX, v.DY, v.DZ },
		Compose:   func(dx, dy, dz float64) Velocity { return Velocity{DX: dx, DY: dy, DZ: dz} },
	}
}

// AccelerationCodec is the canonical VectorCodec for dense Acceleration
// storage.
func AccelerationCodec() VectorCodec[Acceleration] {
	return VectorCodec[Acceleration]{
		Decompose: func(a Acceleration) (float64, float64, float64) { return a.AX, a.AY, a.AZ },
		Compose:   func(ax, ay, az float64) Acceleration { return Acceleration{AX: ax, AY: ay, AZ: az} },
	}
}

// MassCodec is the canonical ScalarCodec for dense Mass storage.
func MassCodec() ScalarCodec[Mass] {
	return ScalarCodec[Mass]{
		Decompose: func(m Mass) float64 { return m.Value },
		Compose:   func(v float64) Mass { return Mass{Value: v} },
	}
}
