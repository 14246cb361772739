package testutil

import (
	"fmt"
	"math/rand"
)

// RandomSwitch returns a function that will output various integers at different weights.
//
// Ex. RandomSwitch(2, 3, 5) will return a function that will output:
//   - `0` 20% of the time
//   - `1` 30% of the time
//   - `2` 50% of the time
func RandomSwitch(weights ...int) func(rndm *rand.Rand) int {
	if len(weights) == 0 {
		panic("a random switch must have at least 1 probability")
	}

	var sum int
	for _, p := range weights {
		if p <= 0 {
			panic("weights must be positive")
		}
		sum += p
	}

	return func(rndm *rand.Rand) int {
		value := rndm.Intn(sum)

		threshold := 0
		for i, weight := range weights {
			threshold += weight
			if value < threshold {
				return i
			}
		}

		panic(fmt.Sprintf("random value generated was out of bounds: %d", value))
	}
}

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range length {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

var firstNames = []string{"Maria", "João", "Ana", "José", "Francisca", "Antônio", "Luiza", "Carlos"}
var lastNames = []string{"Silva", "Santos", "Oliveira", "Souza", "Pereira", "Lima", "Costa"}

// RandomCustomerName picks a plausible full name, sometimes with odd casing
// or padding so callers exercise normalization.
func RandomCustomerName(rndm *rand.Rand) string {
	name := firstNames[rndm.Intn(len(firstNames))] + " " + lastNames[rndm.Intn(len(lastNames))]
	switch rndm.Intn(4) {
	case 0:
		return "  " + name + " "
	case 1:
		return fmt.Sprintf("%s %s", name, RandomString(rndm, 3))
	}
	return name
}

// RandomIntPtr returns nil a third of the time, otherwise a pointer to a
// value in [min, max].
func RandomIntPtr(rndm *rand.Rand, min, max int) *int {
	if rndm.Intn(3) == 0 {
		return nil
	}
	value := min + rndm.Intn(max-min+1)
	return &value
}
