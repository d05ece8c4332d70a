// Package searchkey packs a filter operator, a field key and an optional
// de-duplication token into a single string usable as a map key, and
// unpacks it again.
//
//	=status~3f9a...   equal on "status", tokenized
//	%name             like on "name"
//	&|7c01...         AND-OR group (the token stands in for the key)
package searchkey

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"slices"
	"strings"
)

// TokenSeparator separates the field key from its uniqueness token.
const TokenSeparator = "~"

const tokenBytes = 15

var searchKeyPattern = regexp.MustCompile(`^(?P<filter>[^[:alnum:]]+)?(?P<key>[[:alnum:]][^~]*)(?:~(?P<token>.*))?`)

// Expression is a decoded search key.
type Expression struct {
	Operator Operator
	Key      string
	Token    string
}

// Token returns 15 random bytes hex-encoded. It only has to keep keys and
// parameter names apart within one query.
func Token() string {
	var buf [tokenBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("searchkey: reading random token: " + err.Error())
	}
	return hex.EncodeToString(buf[:])
}

// Encode builds a search key from its parts. When tokenize is true a random
// suffix keeps the key unique so the same field can be filtered more than once.
func Encode(op Operator, key string, tokenize bool) string {
	encoded := string(op) + strings.TrimSpace(key)
	if tokenize {
		encoded += TokenSeparator + Token()
	}
	return encoded
}

// Decode splits a search key into operator, field key and token.
//
// The operator is normalized; unknown sigils are kept verbatim. A key
// without any alphanumeric character decodes to an empty Key.
func Decode(searchKey string) Expression {
	m := searchKeyPattern.FindStringSubmatch(searchKey)
	if m == nil {
		return Expression{}
	}
	return Expression{
		Operator: Normalize(m[searchKeyPattern.SubexpIndex("filter")]),
		Key:      m[searchKeyPattern.SubexpIndex("key")],
		Token:    m[searchKeyPattern.SubexpIndex("token")],
	}
}

// String re-encodes the expression.
func (e Expression) String() string {
	if e.Token == "" {
		return string(e.Operator) + e.Key
	}
	return string(e.Operator) + e.Key + TokenSeparator + e.Token
}

// Filter keys a value that filters only when it is not empty.
func Filter(key string) string { return Encode(OpFilter, key, true) }

// Equal keys `key = value`, or `key IN (...)` for a list.
func Equal(key string) string { return Encode(OpEqual, key, true) }

// NotEqual keys `key <> value`, or `key NOT IN (...)` for a list.
func NotEqual(key string) string { return Encode(OpNotEqual, key, true) }

// Like keys `key LIKE %value%` with the value's wildcards escaped.
func Like(key string) string { return Encode(OpLike, key, true) }

// NotLike keys `key NOT LIKE %value%`.
func NotLike(key string) string { return Encode(OpNotLike, key, true) }

// LikeStrict keys `key LIKE value`, the value being used as the pattern.
func LikeStrict(key string) string { return Encode(OpLikeStrict, key, true) }

// NotLikeStrict keys `key NOT LIKE value`.
func NotLikeStrict(key string) string { return Encode(OpNotLikeStrict, key, true) }

// Null keys `key IS NULL`; the value is ignored.
func Null(key string) string { return Encode(OpNull, key, true) }

// NotNull keys `key IS NOT NULL`; the value is ignored.
func NotNull(key string) string { return Encode(OpNotNull, key, true) }

func Greater(key string) string        { return Encode(OpGreater, key, true) }
func GreaterOrEqual(key string) string { return Encode(OpGreaterOrEqual, key, true) }
func Lower(key string) string          { return Encode(OpLower, key, true) }
func LowerOrEqual(key string) string   { return Encode(OpLowerOrEqual, key, true) }

// And keys a nested search whose members are AND-ed: `... AND (a AND b)`.
func And() string { return string(OpAnd) + Token() }

// Or keys a nested search whose members are AND-ed and which is OR-ed into
// the clause: `... OR (a AND b)`.
func Or() string { return string(OpOr) + Token() }

// AndOr keys a nested search whose members are OR-ed: `... AND (a OR b)`.
func AndOr() string { return string(OpAndOr) + Token() }

// FilteredKey returns the first tokenized key in keys that targets field
// searchKey with at most a one-character operator.
func FilteredKey(searchKey string, keys []string) (string, bool) {
	for _, k := range keys {
		e := Decode(k)
		if e.Token == "" || !isAlnum(e.Token) || len(e.Operator) > 1 {
			continue
		}
		if strings.EqualFold(e.Key, searchKey) {
			return k, true
		}
	}
	return "", false
}

// HasFilteredKey reports whether FilteredKey finds a match.
func HasFilteredKey(searchKey string, keys []string) bool {
	_, ok := FilteredKey(searchKey, keys)
	return ok
}

// FilteredKeyValue returns the value stored under the key FilteredKey finds
// in search. Keys are scanned in sorted order.
func FilteredKeyValue(searchKey string, search map[string]any) (any, bool) {
	keys := make([]string, 0, len(search))
	for k := range search {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	k, ok := FilteredKey(searchKey, keys)
	if !ok {
		return nil, false
	}
	return search[k], true
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
