// Copyright © 2018 The ELPS authors

package rdparser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/parser/rdparser"
)

func benchSource(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `shared class C%d(Integer x) {
	shared Integer twice() { return x * 2 + %d; }
	shared String name = "c%d";
}
`, i, i, i)
	}
	return b.String()
}

func BenchmarkParser(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		src := benchSource(n)
		b.Run(fmt.Sprintf("classes-%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				_, err := rdparser.Parse("bench", strings.NewReader(src))
				if err != nil {
					b.Fatalf("Parse failure: %v", err)
				}
			}
		})
	}
}
