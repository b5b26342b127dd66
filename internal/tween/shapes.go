package tween

// Vec3 is a position in scene units.
type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Lerp(to Vec3, t float64) Vec3 {
	return Vec3{
		X: lerp(v.X, to.X, t),
		Y: lerp(v.Y, to.Y, t),
		Z: lerp(v.Z, to.Z, t),
	}
}

func (v Vec3) Equal(o Vec3) bool { return v == o }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Scalar is a single interpolated value, e.g. a rotation angle in radians.
type Scalar float64

func (s Scalar) Lerp(to Scalar, t float64) Scalar {
	return Scalar(lerp(float64(s), float64(to), t))
}

func (s Scalar) Equal(o Scalar) bool { return s == o }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
