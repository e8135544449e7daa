// Package value implements the YOLOL Value capability: a tagged union of a
// three-decimal-digit fixed-point number and a string, with the arithmetic,
// comparison, coercion and truthiness rules spec'd by the engine's
// collaborator contract.
//
// Grounded on _examples/original_source/src/vm.rs (Cpu::run's operation
// semantics) and src/parser.rs (litteral(), for the saturating fixed-point
// literal parse).
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind distinguishes the two Value shapes.
type Kind int

const (
	KindNumber Kind = iota
	KindString
)

// Scale is the fixed-point scaling factor: every Number field holds the
// true value multiplied by 1000, giving exactly three implied fractional
// digits.
const Scale = 1000

// Value is the engine's only runtime datum: either a scaled fixed-point
// number or a string. The zero Value is the number 0.000, matching the
// variable table's default-initialized entries.
type Value struct {
	Kind   Kind
	Number int64
	Text   string
}

func Number(n int64) Value { return Value{Kind: KindNumber, Number: n} }
func String(s string) Value { return Value{Kind: KindString, Text: s} }

func (v Value) IsString() bool { return v.Kind == KindString }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// Truthy implements spec.md's truthiness rule: a nonzero number is true, any
// string (including the empty string) is false.
func (v Value) Truthy() bool {
	if v.Kind == KindString {
		return false
	}
	return v.Number != 0
}

func boolValue(b bool) Value {
	if b {
		return Number(1000)
	}
	return Number(0)
}

func (v Value) String() string {
	if v.Kind == KindString {
		return v.Text
	}
	return formatFixed(v.Number)
}

func formatFixed(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	whole := n / Scale
	frac := n % Scale
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%03d", sign, whole, frac)
}

// ParseNumberLiteral parses a YOLOL numeric literal's pieces into a scaled
// Value, saturating to the int64 range exactly as
// original_source/src/parser.rs's litteral() rule does: the integer part is
// multiplied by 1000 and the first up-to-three fractional digits are added
// (extra fractional digits beyond three are dropped).
func ParseNumberLiteral(intPart, fracDigits string, negative bool) Value {
	var whole int64
	if intPart != "" {
		w, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			whole = math.MaxInt64 / Scale
		} else {
			whole = w
		}
	}

	scaledWhole := saturatingMul(whole, Scale)

	var frac int64
	if fracDigits != "" {
		digits := fracDigits
		if len(digits) > 3 {
			digits = digits[:3]
		}
		f, _ := strconv.ParseInt(digits, 10, 64)
		switch len(digits) {
		case 1:
			frac = f * 100
		case 2:
			frac = f * 10
		default:
			frac = f
		}
	}

	result := saturatingAdd(scaledWhole, frac)
	if negative {
		result = saturatingNeg(result)
	}
	return Number(result)
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/b != a {
		if (a > 0) == (b > 0) {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return result
}

func saturatingAdd(a, b int64) int64 {
	result := a + b
	if (b > 0 && result < a) || (b < 0 && result > a) {
		if b > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return result
}

func saturatingNeg(a int64) int64 {
	if a == math.MinInt64 {
		return math.MaxInt64
	}
	return -a
}

var errDivByZero = fmt.Errorf("division by zero")

// Add implements numeric addition, string concatenation, and mixed
// number+string concatenation (the number is rendered through String()).
func Add(l, r Value) (Value, error) {
	if l.Kind == KindString || r.Kind == KindString {
		return String(l.String() + r.String()), nil
	}
	return Number(saturatingAdd(l.Number, r.Number)), nil
}

// Sub implements numeric subtraction. For two strings, YOLOL's "-" removes
// the last character of the left operand (the right operand is ignored,
// matching the collaborator contract in spec.md §6).
func Sub(l, r Value) (Value, error) {
	if l.Kind == KindString && r.Kind == KindString {
		if len(l.Text) == 0 {
			return String(""), nil
		}
		runes := []rune(l.Text)
		return String(string(runes[:len(runes)-1])), nil
	}
	if l.Kind == KindString || r.Kind == KindString {
		return Value{}, fmt.Errorf("cannot subtract string and number")
	}
	return Number(saturatingAdd(l.Number, saturatingNeg(r.Number))), nil
}

func requireNumbers(op string, l, r Value) error {
	if l.Kind == KindString || r.Kind == KindString {
		return fmt.Errorf("%s: operand is a string", op)
	}
	return nil
}

// saturatingBig narrows a big.Int product/quotient back to int64, clamping
// to the representable range instead of wrapping.
func saturatingBig(v *big.Int) int64 {
	if v.IsInt64() {
		return v.Int64()
	}
	if v.Sign() > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

func Mul(l, r Value) (Value, error) {
	if err := requireNumbers("*", l, r); err != nil {
		return Value{}, err
	}
	// (a*1000)*(b*1000)/1000 = a*b*1000; the intermediate product can
	// overflow int64 for large fixed-point operands, so it's computed with
	// big.Int and only narrowed (with saturation) at the end.
	product := new(big.Int).Mul(big.NewInt(l.Number), big.NewInt(r.Number))
	product.Quo(product, big.NewInt(Scale))
	return Number(saturatingBig(product)), nil
}

func Div(l, r Value) (Value, error) {
	if err := requireNumbers("/", l, r); err != nil {
		return Value{}, err
	}
	if r.Number == 0 {
		return Value{}, errDivByZero
	}
	numerator := new(big.Int).Mul(big.NewInt(l.Number), big.NewInt(Scale))
	numerator.Quo(numerator, big.NewInt(r.Number))
	return Number(saturatingBig(numerator)), nil
}

func Mod(l, r Value) (Value, error) {
	if err := requireNumbers("%", l, r); err != nil {
		return Value{}, err
	}
	if r.Number == 0 {
		return Value{}, errDivByZero
	}
	return Number(l.Number % r.Number), nil
}

// Pow raises l to the power r. A negative base with a fractional exponent
// fails, matching spec.md §6.
func Pow(l, r Value) (Value, error) {
	if err := requireNumbers("^", l, r); err != nil {
		return Value{}, err
	}
	base := float64(l.Number) / Scale
	exp := float64(r.Number) / Scale
	if base < 0 && r.Number%Scale != 0 {
		return Value{}, fmt.Errorf("pow: negative base with fractional exponent")
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return Value{}, fmt.Errorf("pow: domain error")
	}
	return Number(int64(math.Round(result * Scale))), nil
}

func Eq(l, r Value) Value {
	if l.Kind != r.Kind {
		return boolValue(false)
	}
	if l.Kind == KindString {
		return boolValue(l.Text == r.Text)
	}
	return boolValue(l.Number == r.Number)
}

func Ne(l, r Value) Value {
	if l.Kind != r.Kind {
		return boolValue(true)
	}
	if l.Kind == KindString {
		return boolValue(l.Text != r.Text)
	}
	return boolValue(l.Number != r.Number)
}

func order(l, r Value) (int, error) {
	if l.Kind != r.Kind {
		return 0, fmt.Errorf("cannot order mixed types")
	}
	if l.Kind == KindString {
		return strings.Compare(l.Text, r.Text), nil
	}
	switch {
	case l.Number < r.Number:
		return -1, nil
	case l.Number > r.Number:
		return 1, nil
	default:
		return 0, nil
	}
}

func Lt(l, r Value) (Value, error) {
	c, err := order(l, r)
	if err != nil {
		return Value{}, err
	}
	return boolValue(c < 0), nil
}

func Gt(l, r Value) (Value, error) {
	c, err := order(l, r)
	if err != nil {
		return Value{}, err
	}
	return boolValue(c > 0), nil
}

func Lte(l, r Value) (Value, error) {
	c, err := order(l, r)
	if err != nil {
		return Value{}, err
	}
	return boolValue(c <= 0), nil
}

func Gte(l, r Value) (Value, error) {
	c, err := order(l, r)
	if err != nil {
		return Value{}, err
	}
	return boolValue(c >= 0), nil
}

// And/Or implement YOLOL's logical operators: any string operand behaves as
// false.
func And(l, r Value) Value {
	return boolValue(l.Truthy() && r.Truthy())
}

func Or(l, r Value) Value {
	return boolValue(l.Truthy() || r.Truthy())
}

// Not returns 1 for a falsy operand (zero number or any string), 0 otherwise.
func Not(v Value) Value {
	return boolValue(!v.Truthy())
}

func Neg(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("neg: operand is a string")
	}
	return Number(saturatingNeg(v.Number)), nil
}

func Abs(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("abs: operand is a string")
	}
	if v.Number < 0 {
		return Number(saturatingNeg(v.Number)), nil
	}
	return v, nil
}

func Sqrt(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("sqrt: operand is a string")
	}
	if v.Number < 0 {
		return Value{}, fmt.Errorf("sqrt: domain error")
	}
	f := float64(v.Number) / Scale
	return Number(int64(math.Round(math.Sqrt(f) * Scale))), nil
}

func trig(name string, v Value, fn func(float64) float64, degreesIn bool) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("%s: operand is a string", name)
	}
	f := float64(v.Number) / Scale
	if degreesIn {
		f = f * math.Pi / 180
	}
	result := fn(f)
	return Number(int64(math.Round(result * Scale))), nil
}

func trigInverse(name string, v Value, fn func(float64) float64, domain func(float64) bool) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("%s: operand is a string", name)
	}
	f := float64(v.Number) / Scale
	if domain != nil && !domain(f) {
		return Value{}, fmt.Errorf("%s: domain error", name)
	}
	result := fn(f) * 180 / math.Pi
	return Number(int64(math.Round(result * Scale))), nil
}

func Sin(v Value) (Value, error) { return trig("sin", v, math.Sin, true) }
func Cos(v Value) (Value, error) { return trig("cos", v, math.Cos, true) }
func Tan(v Value) (Value, error) { return trig("tan", v, math.Tan, true) }

func Asin(v Value) (Value, error) {
	return trigInverse("asin", v, math.Asin, func(f float64) bool { return f >= -1 && f <= 1 })
}

func Acos(v Value) (Value, error) {
	return trigInverse("acos", v, math.Acos, func(f float64) bool { return f >= -1 && f <= 1 })
}

func Atan(v Value) (Value, error) {
	return trigInverse("atan", v, math.Atan, nil)
}

// Fac computes the factorial of a non-negative integer-valued number.
func Fac(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("fac: operand is a string")
	}
	if v.Number%Scale != 0 || v.Number < 0 {
		return Value{}, fmt.Errorf("fac: domain error")
	}
	n := v.Number / Scale
	var result int64 = 1
	for i := int64(2); i <= n; i++ {
		result = saturatingMul(result, i)
	}
	return Number(saturatingMul(result, Scale)), nil
}

func Inc(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("inc: operand is a string")
	}
	return Number(saturatingAdd(v.Number, Scale)), nil
}

func Dec(v Value) (Value, error) {
	if v.Kind == KindString {
		return Value{}, fmt.Errorf("dec: operand is a string")
	}
	return Number(saturatingAdd(v.Number, -Scale)), nil
}
