package poh_test

import (
	"strconv"
	"testing"

	"github.com/LICODX/proof-of-history/pkg/digest"
	"github.com/LICODX/proof-of-history/poh"
)

func BenchmarkTicks(b *testing.B) {
	for _, name := range digest.Names() {
		d, _ := digest.Lookup(name)
		b.Run(name, func(b *testing.B) {
			gen := poh.NewGenerator[poh.Hash256](d, poh.Hash256{})
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				gen.Next()
			}
		})
	}
}

func BenchmarkVerify(b *testing.B) {
	const n = 1 << 16
	var seed poh.Hash256
	chain := poh.Generate[poh.Hash256](digest.SHA256, seed, n, nil)

	for _, workers := range []int{1, 4, 0} {
		v := poh.NewVerifier[poh.Hash256](digest.SHA256, poh.WithWorkers(workers))
		b.Run("workers="+strconv.Itoa(v.Workers()), func(b *testing.B) {
			b.SetBytes(n * 32)
			for i := 0; i < b.N; i++ {
				if err := v.Verify(chain, seed, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
