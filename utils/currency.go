package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundAmount membulatkan nominal ke 2 digit desimal.
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatAmount memformat nominal dengan tepat 2 digit desimal,
// dipakai untuk total cart saat ditampilkan dan saat submit.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", RoundAmount(amount))
}

// FormatCurrency memformat angka ke format mata uang Rupiah
func FormatCurrency(amount float64) string {
	formatted := FormatAmount(amount)

	// Pisahkan bagian desimal
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// Tambahkan pemisah ribuan
	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	return "Rp " + strings.Join(result, ".") + "," + decimalPart
}
