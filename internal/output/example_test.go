package output_test

import (
	"bytes"
	"fmt"

	"modguard/internal/output"
)

// ExampleEncodeJSON demonstrates deterministic encoding
func ExampleEncodeJSON() {
	data := map[string]interface{}{
		"zebra": "last",
		"alpha": "first",
	}

	// Encode twice
	json1, _ := output.EncodeJSON(data)
	json2, _ := output.EncodeJSON(data)

	// Results are byte-identical
	fmt.Printf("Identical: %v\n", bytes.Equal(json1, json2))
	fmt.Printf("%s", json1)

	// Output:
	// Identical: true
	// {
	//   "alpha": "first",
	//   "zebra": "last"
	// }
}

// ExampleWriteLines demonstrates the human rendering
func ExampleWriteLines() {
	var buf bytes.Buffer
	_ = output.WriteLines(&buf, []string{
		"order -> inventory (uses component)",
		"order -> catalog (references entity)",
	})
	fmt.Print(buf.String())

	// Output:
	// order -> inventory (uses component)
	// order -> catalog (references entity)
}
