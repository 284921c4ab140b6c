package domain

import (
	"fmt"
	"strings"
)

// Channel is one of the four liquid colors tracked by the shop.
type Channel int

const (
	Green Channel = iota
	Red
	Blue
	Dark
)

// NumChannels is the width of every composition tuple.
const NumChannels = 4

// Channels lists every channel in canonical order.
var Channels = [NumChannels]Channel{Green, Red, Blue, Dark}

var channelNames = [NumChannels]string{"green", "red", "blue", "dark"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel resolves a channel from its name, case-insensitively.
func ParseChannel(name string) (Channel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// LiquidInventory holds milliliters per channel, indexed by Channel.
type LiquidInventory [NumChannels]int

func (inv LiquidInventory) Total() int {
	total := 0
	for _, ml := range inv {
		total += ml
	}
	return total
}

// Recipe is a percentage composition of one bottle. Components sum to 100.
type Recipe [NumChannels]int

// Signature is the raw per-bottle composition of a delivered potion. It is the
// catalog identity key and is comparable, so it can be used as a map key.
type Signature [NumChannels]int

// Debit returns the milliliters each channel loses when quantity bottles are delivered.
func (s Signature) Debit(quantity int) LiquidInventory {
	var debit LiquidInventory
	for i, part := range s {
		debit[i] = part * quantity
	}
	return debit
}
