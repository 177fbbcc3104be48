package repositories

import (
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func stringPtr(s string) *string {
	return &s
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
