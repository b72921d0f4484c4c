package inspect

import "fmt"

// sizeUnits are the binary-prefix units beyond plain bytes.
// int64 sums can reach the EB range, so the table runs that far.
var sizeUnits = [...]string{"KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders a byte count with binary prefixes and two decimal
// places, e.g. 1536 -> "1.50 KB", 2416542788 -> "2.25 GB". Values below
// 1024 (including zero) render as plain bytes with no decimals.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), sizeUnits[exp])
}
