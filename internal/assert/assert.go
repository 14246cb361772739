package assert

import "fmt"

// NotNil panics when value is nil, `what` names the value in the panic message.
func NotNil(value any, what ...string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", describe(what)))
	}
}

// NotEmptyStr panics when str is empty.
func NotEmptyStr(str string, what ...string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be non-empty", describe(what)))
	}
}

func describe(what []string) string {
	if len(what) == 0 {
		return "value"
	}
	return what[0]
}
