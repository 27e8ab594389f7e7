package keyboard

import (
	"errors"
	"fmt"
	"strings"
)

// Callback payloads are "unique" or "unique:data". Telegram caps callback
// data at 64 bytes, so shortcut names used as data can overflow; Build
// surfaces that as an error instead of sending a truncated payload.
const (
	CallbackDataSeparator  = ":"
	CallbackDataLimitBytes = 64
)

// EncodeCallback joins a unique and its payload into callback data.
func EncodeCallback(unique, data string) (string, error) {
	payload := unique
	if data != "" {
		payload = unique + CallbackDataSeparator + data
	}

	if len(payload) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(payload))
	}

	return payload, nil
}

// DecodeCallback splits callback data back into unique and payload. Only
// the first separator splits; the payload may itself contain separators.
func DecodeCallback(callbackData string) (unique, data string, err error) {
	if callbackData == "" {
		return "", "", errors.New("callback data is empty")
	}

	unique, data, found := strings.Cut(callbackData, CallbackDataSeparator)
	if !found {
		return callbackData, "", nil
	}

	return unique, data, nil
}
