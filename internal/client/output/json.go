package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONResponse is the standard JSON output format
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// OutputJSON prints data in JSON format
func OutputJSON(data interface{}, err error) {
	if encodeErr := WriteJSON(os.Stdout, data, err); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", encodeErr)
		os.Exit(1)
	}
}

// WriteJSON writes data wrapped in a JSONResponse to w
func WriteJSON(w io.Writer, data interface{}, err error) error {
	response := JSONResponse{
		Success: err == nil,
		Data:    data,
	}

	if err != nil {
		response.Error = err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
