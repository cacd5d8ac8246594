package interp

import "github.com/ren-core/ren/internal/symtab"

// Symbol is the interned word-spelling type from internal/symtab, re-used
// directly by Cell's word-bearing hearts.
type Symbol = symtab.Symbol
