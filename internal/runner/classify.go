package runner

import (
	"encoding/json"
	"fmt"
	"net/http"

	"truthmate_probe/internal/model"
)

// appErrorKey marks an application-level problem inside a 200 body.
const appErrorKey = "error"

// Classify turns one round-trip into an Outcome. It is a pure function of the
// expected status, the received status and body, and the transport error.
//
// A 200 whose JSON object carries an "error" key is still a success; the
// error value is kept in Outcome.AppError. A 200 body that is not JSON is
// treated as a transport failure since no usable response was received.
func Classify(expect, status int, body []byte, err error) (model.Outcome, map[string]any) {
	if err != nil {
		return model.Outcome{Kind: model.OutcomeTransportError, Message: err.Error()}, nil
	}

	if status != expect {
		return model.Outcome{
			Kind:       model.OutcomeHTTPError,
			StatusCode: status,
			Body:       string(body),
		}, nil
	}

	outcome := model.Outcome{Kind: model.OutcomeSuccess, StatusCode: status}
	if status != http.StatusOK {
		// Non-200 expectations (liveness probes) only check the status.
		return outcome, nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return model.Outcome{
			Kind:       model.OutcomeTransportError,
			StatusCode: status,
			Message:    fmt.Sprintf("decode response body: %v", err),
		}, nil
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return outcome, nil
	}
	if v, found := obj[appErrorKey]; found {
		outcome.AppError = appErrorText(v)
	}
	return outcome, obj
}

// ClassifyTruncated is the outcome of an expected status whose body exceeded
// the read limit. The status alone decides success; the body is not
// inspected, so no soft error can be detected.
func ClassifyTruncated(status int) model.Outcome {
	return model.Outcome{
		Kind:          model.OutcomeSuccess,
		StatusCode:    status,
		BodyTruncated: true,
	}
}

func appErrorText(v any) string {
	switch e := v.(type) {
	case string:
		if e == "" {
			return "(empty error)"
		}
		return e
	case nil:
		return "null"
	default:
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprint(e)
		}
		return string(data)
	}
}
