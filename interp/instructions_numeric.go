package interp

import "math"

// Arithmetic never fails loudly: division by zero, domain errors and results
// that cannot be represented consume the operands and push nothing.

func finite(f float64) (float64, bool) {
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func addInt(a, b int64) (int64, bool) {
	r := a + b
	// overflow flips the sign away from both operands
	if (a >= 0) == (b >= 0) && (r >= 0) != (a >= 0) {
		return 0, false
	}
	return r, true
}

func subInt(a, b int64) (int64, bool) {
	r := a - b
	if (a >= 0) != (b >= 0) && (r >= 0) != (a >= 0) {
		return 0, false
	}
	return r, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return r, true
}

// powInt raises base to a non-negative exponent by square-and-multiply.
func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		var ok bool
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (in *Interpreter) registerIntegerInstructions() {
	r := in.registry

	r.mustRegister("integer.+", binary(ints, addInt))
	r.mustRegister("integer.-", binary(ints, subInt))
	r.mustRegister("integer.*", binary(ints, mulInt))
	r.mustRegister("integer./", binary(ints, func(a, b int64) (int64, bool) {
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return 0, false
		}
		return a / b, true
	}))
	r.mustRegister("integer.%", binary(ints, func(a, b int64) (int64, bool) {
		if b == 0 || (a == math.MinInt64 && b == -1) {
			return 0, false
		}
		return a % b, true
	}))
	r.mustRegister("integer.pow", binary(ints, func(a, b int64) (int64, bool) {
		if b < 0 {
			return 0, false
		}
		return powInt(a, b)
	}))
	// integer.log pushes the floor of log base top of second
	r.mustRegister("integer.log", binary(ints, func(a, b int64) (int64, bool) {
		if a <= 0 || b <= 1 {
			return 0, false
		}
		return floatToInt(math.Floor(math.Log(float64(a)) / math.Log(float64(b))))
	}))
	r.mustRegister("integer.min", binary(ints, func(a, b int64) (int64, bool) {
		if a < b {
			return a, true
		}
		return b, true
	}))
	r.mustRegister("integer.max", binary(ints, func(a, b int64) (int64, bool) {
		if a > b {
			return a, true
		}
		return b, true
	}))
	r.mustRegister("integer.abs", unary(ints, func(a int64) (int64, bool) {
		if a == math.MinInt64 {
			return 0, false
		}
		if a < 0 {
			return -a, true
		}
		return a, true
	}))
	r.mustRegister("integer.neg", unary(ints, func(a int64) (int64, bool) {
		if a == math.MinInt64 {
			return 0, false
		}
		return -a, true
	}))

	r.mustRegister("integer.=", compare(ints, equal[int64]))
	r.mustRegister("integer.<", compare(ints, func(a, b int64) bool { return a < b }))
	r.mustRegister("integer.>", compare(ints, func(a, b int64) bool { return a > b }))

	r.mustRegister("integer.fromfloat", convert(floats, ints, floatToInt))
	r.mustRegister("integer.fromboolean", convert(bools, ints, func(b bool) (int64, bool) { return boolToInt(b), true }))
	r.mustRegister("integer.rand", func(in *Interpreter) {
		in.Int.Push(in.randomInteger(in.rng))
	})
}

func (in *Interpreter) registerFloatInstructions() {
	r := in.registry

	r.mustRegister("float.+", binary(floats, func(a, b float64) (float64, bool) { return finite(a + b) }))
	r.mustRegister("float.-", binary(floats, func(a, b float64) (float64, bool) { return finite(a - b) }))
	r.mustRegister("float.*", binary(floats, func(a, b float64) (float64, bool) { return finite(a * b) }))
	r.mustRegister("float./", binary(floats, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return finite(a / b)
	}))
	r.mustRegister("float.%", binary(floats, func(a, b float64) (float64, bool) {
		if b == 0 {
			return 0, false
		}
		return finite(math.Mod(a, b))
	}))
	r.mustRegister("float.pow", binary(floats, func(a, b float64) (float64, bool) { return finite(math.Pow(a, b)) }))
	r.mustRegister("float.log", binary(floats, func(a, b float64) (float64, bool) {
		if a <= 0 || b <= 0 || b == 1 {
			return 0, false
		}
		return finite(math.Log(a) / math.Log(b))
	}))
	r.mustRegister("float.min", binary(floats, func(a, b float64) (float64, bool) { return math.Min(a, b), true }))
	r.mustRegister("float.max", binary(floats, func(a, b float64) (float64, bool) { return math.Max(a, b), true }))
	r.mustRegister("float.abs", unary(floats, func(a float64) (float64, bool) { return math.Abs(a), true }))
	r.mustRegister("float.neg", unary(floats, func(a float64) (float64, bool) { return -a, true }))
	r.mustRegister("float.sin", unary(floats, func(a float64) (float64, bool) { return finite(math.Sin(a)) }))
	r.mustRegister("float.cos", unary(floats, func(a float64) (float64, bool) { return finite(math.Cos(a)) }))
	r.mustRegister("float.tan", unary(floats, func(a float64) (float64, bool) { return finite(math.Tan(a)) }))
	r.mustRegister("float.exp", unary(floats, func(a float64) (float64, bool) { return finite(math.Exp(a)) }))
	r.mustRegister("float.ln", unary(floats, func(a float64) (float64, bool) {
		if a <= 0 {
			return 0, false
		}
		return finite(math.Log(a))
	}))

	r.mustRegister("float.=", compare(floats, equal[float64]))
	r.mustRegister("float.<", compare(floats, func(a, b float64) bool { return a < b }))
	r.mustRegister("float.>", compare(floats, func(a, b float64) bool { return a > b }))

	r.mustRegister("float.frominteger", convert(ints, floats, func(i int64) (float64, bool) { return float64(i), true }))
	r.mustRegister("float.fromboolean", convert(bools, floats, func(b bool) (float64, bool) { return float64(boolToInt(b)), true }))
	r.mustRegister("float.rand", func(in *Interpreter) {
		in.Float.Push(in.randomFloat(in.rng))
	})
}

func (in *Interpreter) registerBooleanInstructions() {
	r := in.registry

	r.mustRegister("boolean.and", binary(bools, func(a, b bool) (bool, bool) { return a && b, true }))
	r.mustRegister("boolean.or", binary(bools, func(a, b bool) (bool, bool) { return a || b, true }))
	r.mustRegister("boolean.xor", binary(bools, func(a, b bool) (bool, bool) { return a != b, true }))
	r.mustRegister("boolean.not", unary(bools, func(a bool) (bool, bool) { return !a, true }))
	r.mustRegister("boolean.=", compare(bools, equal[bool]))
	r.mustRegister("boolean.frominteger", convert(ints, bools, func(i int64) (bool, bool) { return i != 0, true }))
	r.mustRegister("boolean.fromfloat", convert(floats, bools, func(f float64) (bool, bool) { return f != 0, true }))
	r.mustRegister("boolean.rand", func(in *Interpreter) { in.Bool.Push(in.rng.Intn(2) == 0) })
}
