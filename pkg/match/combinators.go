package match

// Zero returns a parser that never matches. It is the identity of Alt.
func Zero[T any]() Parser[T] {
	return ParserFunc[T](func([]string) (T, []string, error) {
		var zero T
		return zero, nil, ErrNoMatch
	})
}

// Alt tries first and, if it fails, second against the same input. The
// first success wins; nothing first consumed is visible to second.
func Alt[T any](first, second Parser[T]) Parser[T] {
	return ParserFunc[T](func(parts []string) (T, []string, error) {
		if v, rest, err := first.Parse(parts); err == nil {
			return v, rest, nil
		}
		return second.Parse(parts)
	})
}

// OneOf folds ps with Alt starting from Zero, so earlier parsers take
// precedence over later ones.
func OneOf[T any](ps ...Parser[T]) Parser[T] {
	out := Zero[T]()
	for _, p := range ps {
		out = Alt(out, p)
	}
	return out
}

// Map transforms the value produced by p.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return ParserFunc[B](func(parts []string) (B, []string, error) {
		a, rest, err := p.Parse(parts)
		if err != nil {
			var zero B
			return zero, nil, err
		}
		return f(a), rest, nil
	})
}

// Imap maps a matcher through an isomorphism. from(to(a)) must equal a
// for the result to keep the round-trip law.
func Imap[A, B any](m Matcher[A], to func(A) B, from func(B) A) Matcher[B] {
	format := FormatterFunc[B](func(b B) []string {
		return m.Format(from(b))
	})
	return bound[B](m, Map[A, B](m, to), format)
}
