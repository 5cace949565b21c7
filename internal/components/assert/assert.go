package assert

import "fmt"

func NotNil(value any, names ...string) {
	if value == nil {
		panic(fmt.Sprintf("expected %s to be not nil", describe(names)))
	}
}

func NotEmptyStr(str string, names ...string) {
	if str == "" {
		panic(fmt.Sprintf("expected %s to be non-empty", describe(names)))
	}
}

func describe(names []string) string {
	if len(names) == 0 {
		return "value"
	}
	return names[0]
}
