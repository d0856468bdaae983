// Package hwids maps MSM hardware identifiers reported by GetHardwareId
// to SoC names. The table is a partial list of identifiers seen in the
// wild; unknown IDs format as hex.
package hwids

import "fmt"

var names = map[uint32]string{
	0x009600E1: "APQ8096",
	0x008110E1: "MSM8974",
	0x009440E1: "MSM8916",
	0x009470E1: "MSM8929",
	0x009680E1: "APQ8039",
	0x0005E0E1: "MSM8998",
	0x0005F0E1: "MSM8996AU",
	0x000660E1: "SDM660",
	0x000840E1: "SDM845",
	0x000930E1: "SM8150",
	0x000A50E1: "SM8250",
	0x000C30E1: "SM8350",
	0x0008C0E1: "SDM670",
	0x0009A0E1: "SM6125",
	0x0004F0E1: "MSM8937",
	0x000460E1: "MSM8953",
	0x0006B0E1: "SDM630",
	0x000CC0E1: "SM7325",
}

// Name resolves an MSM hardware ID to a SoC name.
func Name(id uint32) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("unknown (0x%08X)", id)
}
