// Package urls holds the named routes of the polls app and builds URLs from them.
package urls

import (
	"errors"
	"fmt"
	"strings"
)

// Route names.
const (
	IndexRoute   = "index"
	DetailRoute  = "detail"
	VoteRoute    = "vote"
	ResultsRoute = "results"
	LiveRoute    = "live"
)

// Prefix is where the polls app is mounted.
const Prefix = "/polls"

// QuestionParam is the path parameter naming a question.
const QuestionParam = "question_id"

var ErrNoReverseMatch = errors.New("no reverse match")

// Patterns maps route names to gin patterns relative to Prefix.
var Patterns = map[string]string{
	IndexRoute:   "/",
	DetailRoute:  "/:" + QuestionParam + "/",
	VoteRoute:    "/:" + QuestionParam + "/vote/",
	ResultsRoute: "/:" + QuestionParam + "/results/",
	LiveRoute:    "/:" + QuestionParam + "/live/",
}

// Path returns the absolute gin pattern for name.
func Path(name string) string {
	return Prefix + Patterns[name]
}

// Reverse 根据路由名称和参数生成 URL
func Reverse(name string, args ...any) (string, error) {
	pattern, ok := Patterns[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown route %q", ErrNoReverseMatch, name)
	}

	segments := strings.Split(pattern, "/")
	used := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if used >= len(args) {
			return "", fmt.Errorf("%w: route %q needs more arguments than %d", ErrNoReverseMatch, name, len(args))
		}
		segments[i] = fmt.Sprint(args[used])
		if segments[i] == "" {
			return "", fmt.Errorf("%w: route %q got an empty %s", ErrNoReverseMatch, name, seg[1:])
		}
		used++
	}
	if used != len(args) {
		return "", fmt.Errorf("%w: route %q takes %d arguments, got %d", ErrNoReverseMatch, name, used, len(args))
	}

	return Prefix + strings.Join(segments, "/"), nil
}

// MustReverse is Reverse for routes known at compile time.
func MustReverse(name string, args ...any) string {
	u, err := Reverse(name, args...)
	if err != nil {
		panic(err)
	}
	return u
}
