package shared

// Resource identifies one of the currencies tracked by the economy.
//
// Carbon, titanium and food are per-planet balances subject to storage
// clamping. Credits and dark matter are global per-user balances and are
// never stored on a planet.
type Resource string

const (
	ResourceCarbon     Resource = "carbon"
	ResourceTitanium   Resource = "titanium"
	ResourceFood       Resource = "food"
	ResourceCredits    Resource = "credits"
	ResourceDarkMatter Resource = "dark_matter"
)

// PlanetResources lists the resources held on a planet, in canonical order.
var PlanetResources = []Resource{ResourceCarbon, ResourceTitanium, ResourceFood}

// IsPlanetResource reports whether the resource is stored per-planet.
func (r Resource) IsPlanetResource() bool {
	switch r {
	case ResourceCarbon, ResourceTitanium, ResourceFood:
		return true
	default:
		return false
	}
}

// Amounts is a per-resource integer quantity map used for costs, donations
// and loot. A nil map reads as zero everywhere.
type Amounts map[Resource]int

// Get returns the amount for a resource, zero if absent.
func (a Amounts) Get(r Resource) int {
	if a == nil {
		return 0
	}
	return a[r]
}

// Add merges other into a receiver copy and returns it.
func (a Amounts) Add(other Amounts) Amounts {
	result := a.Clone()
	for r, v := range other {
		result[r] += v
	}
	return result
}

// Clone returns an independent copy.
func (a Amounts) Clone() Amounts {
	result := make(Amounts, len(a))
	for r, v := range a {
		result[r] = v
	}
	return result
}

// Total sums all amounts across resources.
func (a Amounts) Total() int {
	total := 0
	for _, v := range a {
		total += v
	}
	return total
}

// Covers reports whether a has at least the amount of every resource in need.
func (a Amounts) Covers(need Amounts) bool {
	for r, v := range need {
		if a.Get(r) < v {
			return false
		}
	}
	return true
}

// Scale multiplies every amount by factor, truncating toward zero.
func (a Amounts) Scale(factor float64) Amounts {
	result := make(Amounts, len(a))
	for r, v := range a {
		result[r] = int(float64(v) * factor)
	}
	return result
}

// IsZero reports whether every amount is zero.
func (a Amounts) IsZero() bool {
	for _, v := range a {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clamp returns v limited to the [min, max] range.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// MinInt returns the minimum of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MinInt3 returns the minimum of three integers.
func MinInt3(a, b, c int) int {
	result := a
	if b < result {
		result = b
	}
	if c < result {
		result = c
	}
	return result
}
