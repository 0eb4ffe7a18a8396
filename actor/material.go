package actor

// Material holds the surface and bulk properties of a body
type Material struct {
	Restitution     float64 // 0 = no rebound, 1 = perfect restitution
	Density         float64
	StaticFriction  float64
	DynamicFriction float64
}

// MassData keeps mass and inertia next to their inverses. A zero mass or
// inertia has a zero inverse, which is how static bodies stay immovable.
type MassData struct {
	mass           float64
	inverseMass    float64
	inertia        float64
	inverseInertia float64
}

func NewMassData(mass, inertia float64) MassData {
	m := MassData{mass: mass, inertia: inertia}
	if mass != 0 {
		m.inverseMass = 1.0 / mass
	}
	if inertia != 0 {
		m.inverseInertia = 1.0 / inertia
	}

	return m
}

func (m MassData) Mass() float64 {
	return m.mass
}

func (m MassData) InverseMass() float64 {
	return m.inverseMass
}

func (m MassData) Inertia() float64 {
	return m.inertia
}

func (m MassData) InverseInertia() float64 {
	return m.inverseInertia
}
