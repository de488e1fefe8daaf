package debug

import "fmt"

func getStringValue(v interface{}) string {
	switch a := v.(type) {
	case func() string:
		return a()

	case string:
		return a

	case error:
		return a.Error()

	case fmt.Stringer:
		return a.String()

	default:
		panic(fmt.Sprintf("unexpected type, %T", v))
	}
}
