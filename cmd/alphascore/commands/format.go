package commands

import (
	"fmt"
	"strings"
)

// Shared console formatting so every command prints the same way.

const separatorWidth = 59

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", separatorWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", separatorWidth))
}

// PrintHeader prints a boxed section title
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintDoubleSeparator()
}

// PrintKeyValue prints an aligned key-value pair
func PrintKeyValue(key string, value interface{}, keyWidth int) {
	fmt.Printf("   %-*s : %v\n", keyWidth, key, value)
}

// PrintTableHeader prints column titles with an underline
func PrintTableHeader(columns []string, widths []int) {
	for i, col := range columns {
		fmt.Printf("%-*s", widths[i], col)
		if i < len(columns)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints one row under a PrintTableHeader
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}
