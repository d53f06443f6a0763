// Package tkv is a typed key/value store on top of an embedded MVCC
// engine: libmdbx through mdbx-go by default, or bbolt in pure Go.
//
// A Store[K, V] binds one database to a key codec and a value codec chosen
// at compile time. Transactions are begun lazily: reads start a read
// transaction, writes a write transaction, and Commit or Abort end it.
// Engine failures are reported as *Error values carrying a Kind.
//
// Key features:
//   - Integer keys in numeric order, string and byte keys in byte order
//   - String, byte, integer, BinaryMarshaler and msgpack values
//   - Optional sorted duplicate values per key
//   - Environments shared between stores opened on the same directory
//   - Scoped View/Update transactions
//
// Basic usage:
//
//	s, err := tkv.Open("/path/to/db", tkv.IntKey[uint64]{}, tkv.StringValue[string]{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if err := s.Put(1, "alpha"); err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := s.Begin()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ok := true; ok; ok, err = c.Next() {
//	    k, _ := c.Key()
//	    v, _ := c.Value()
//	    fmt.Println(k, v)
//	}
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s.Abort()
//
// With the mdbx backend a transaction is bound to the OS thread that began
// it: the goroutine that starts a transaction must also end it.
package tkv
