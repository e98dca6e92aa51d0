package trie

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func collect(tr *Trie, prefix string) []string {
	var keys []string
	tr.WalkPrefix(prefix, func(key string, _ interface{}) {
		keys = append(keys, key)
	})
	return keys
}

func TestTrie(t *testing.T) {
	Convey("a trie", t, func() {
		Convey("should remember inserted values", func() {
			tr := NewTrie()
			tr.Set("key", "value")
			v, ok := tr.Get("key")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "value")
		})

		Convey("should split nodes when keys diverge", func() {
			tr := NewTrie()
			tr.Set("cat", "cat")
			tr.Set("car", "car")
			tr.Set("cad", "cad")
			for _, k := range []string{"cat", "car", "cad"} {
				v, _ := tr.Get(k)
				So(v, ShouldEqual, k)
			}
			So(tr.Contains("ca"), ShouldBeFalse)
			So(tr.Len(), ShouldEqual, 3)
		})

		Convey("should traverse child nodes with consecutively longer keys", func() {
			tr := NewTrie()
			tr.Set("carts", "carts")
			tr.Set("cart", "cart")
			tr.Set("car", "car")
			for _, k := range []string{"car", "cart", "carts"} {
				v, _ := tr.Get(k)
				So(v, ShouldEqual, k)
			}
			So(tr.Contains("cartsy"), ShouldBeFalse)
		})

		Convey("should overwrite the value of a key inserted twice", func() {
			tr := NewTrie()
			tr.Set("moo", "old")
			tr.Set("moo", "moo")
			v, _ := tr.Get("moo")
			So(v, ShouldEqual, "moo")
			So(tr.Len(), ShouldEqual, 1)
		})

		Convey("should walk keys under a prefix in order", func() {
			tr := NewTrie()
			for _, k := range []string{"integer.+", "integer.-", "float.+", "integer.dup", "integer", "exec.k"} {
				tr.Set(k, k)
			}
			So(collect(tr, "integer."), ShouldResemble, []string{"integer.+", "integer.-", "integer.dup"})
			So(collect(tr, "int"), ShouldResemble, []string{"integer", "integer.+", "integer.-", "integer.dup"})
			So(collect(tr, "bool"), ShouldBeEmpty)
			So(collect(tr, ""), ShouldHaveLength, 6)
		})
	})
}
