// Copyright © 2024 The ELPS authors

package analysis

import (
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInference_RoundTrip(t *testing.T) {
	r := checkUnit(t, `
void f() {
    value s = "text";
    value n = 1;
    value e = n -> s;
}
`)
	assert.Empty(t, r.Diagnostics)
	pu := r.Unit("p/unit.ceylon")
	for _, name := range []string{"s", "n", "e"} {
		init := r.Info.TypeOf(specifier(t, pu, name))
		require.NotNil(t, init, name)
		assert.True(t, model.Equal(init, declType(t, r, pu, name)), name)
	}
	assert.Equal(t, "Entry<Integer, String>", model.TypeString(declType(t, r, pu, "e")))

	// Checking the unit again changes neither types nor diagnostics.
	before := declType(t, r, pu, "e")
	c := r.Context
	pu.Phase = PhaseNamesResolved
	c.checked = make(map[tree.Node]bool)
	c.CheckExpressions(pu)
	assert.Same(t, before, declType(t, r, pu, "e"))
	assert.Empty(t, pu.Diagnostics())
}

// A binding whose initializer already failed is not reported again.
func TestInference_Failures(t *testing.T) {
	r := checkUnit(t, `
value nothing;
value none = {};
value loop = loop;
value unknown = fnord;
function twice() => fnord;
`)
	assert.Equal(t, []string{
		"could not infer type of: nothing",
		"could not infer type of sequence enumeration",
		"could not infer type of: loop",
		"could not determine target of base member reference: fnord",
		"could not determine target of base member reference: fnord",
	}, messages(r.Diagnostics))
	pu := r.Unit("p/unit.ceylon")
	assert.Equal(t, 2, r.Diagnostics[0].Pos.Line)
	assert.Equal(t, 3, r.Diagnostics[1].Pos.Line)
	assert.Equal(t, specifier(t, pu, "loop"), r.Diagnostics[2].Node)
}

func TestInference_FunctionsAndGetters(t *testing.T) {
	r := checkUnit(t, `
function twice(Integer i) {
    return i + i;
}
function fixed() => "x";
value size {
    return 3;
}
function nothingReturned() {
}
`)
	assert.Empty(t, r.Diagnostics)
	pu := r.Unit("p/unit.ceylon")
	assert.Equal(t, "Integer", model.TypeString(declType(t, r, pu, "twice")))
	assert.Equal(t, "String", model.TypeString(declType(t, r, pu, "fixed")))
	assert.Equal(t, "Integer", model.TypeString(declType(t, r, pu, "size")))
	assert.Equal(t, "Void", model.TypeString(declType(t, r, pu, "nothingReturned")))
}

func TestInference_LazyAcrossUnits(t *testing.T) {
	r := check(t, map[string]string{
		"p/a.ceylon": `Integer early = later + 1;`,
		"p/b.ceylon": `value later = 41;`,
	})
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "Integer", model.TypeString(declType(t, r, r.Unit("p/b.ceylon"), "later")))
}

func TestInference_Cycle(t *testing.T) {
	r := checkUnit(t, `
value first = second;
value second = first;
`)
	assert.Contains(t, messages(r.Diagnostics), "could not infer type of: first")
	pu := r.Unit("p/unit.ceylon")
	assert.Nil(t, declType(t, r, pu, "first"))
}

func TestArity(t *testing.T) {
	tests := []struct {
		name string
		call string
		msg  string
	}{
		{"missing", "f(1);", "no argument to parameter: b"},
		{"extra", "f(1, 2, 3);", "no matching parameter for argument"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := checkUnit(t, `
void f(Integer a, Integer b) {}
void g() {
    `+tc.call+`
}
`)
			assert.Equal(t, []string{tc.msg}, messages(r.Diagnostics))
		})
	}
}

func TestInvocation_Positional(t *testing.T) {
	r := checkUnit(t, `
void f(Integer a, String b = "b", Integer... rest) {}
void g() {
    f(1);
    f(1, "x", 2, 3);
    f("one");
    f(1, "x", "y");
    Integer i = 1;
    i(2);
}
`)
	assert.ElementsMatch(t, []string{
		"argument not assignable to parameter type: a since String is not Integer",
		"argument not assignable to parameter type: rest since String is not Integer",
		"receiving expression cannot be invoked",
	}, messages(r.Diagnostics))
}

func TestInvocation_Named(t *testing.T) {
	r := checkUnit(t, `
void g(Integer a, String b = "x", Integer... rest) {}
void h(Integer a) {}
void f() {
    g { a = 1; };
    g { a = 1; b = "y"; 2, 3 };
    g { b = "y"; };
    g { a = 1; c = 2; };
    g { a = "s"; };
    g { a = 1; a = 2; };
    h { a = 1; 2 };
}
`)
	assert.ElementsMatch(t, []string{
		"missing named argument to parameter: a",
		"no matching parameter for named argument: c",
		"named argument not assignable to parameter type: a since String is not Integer",
		"duplicate named argument: a",
		"no matching sequenced parameter",
	}, messages(r.Diagnostics))
}

// An invocation of a generic class or method has the type produced by its
// inferred type arguments.  Typing it as the invoked reference instead
// would give Box<T>, so these results differ from that behavior.
func TestInvocation_InfersTypeArguments(t *testing.T) {
	r := checkUnit(t, `
class Box<T>(T t) {
    shared T item = t;
}
T identity<T>(T t) {
    return t;
}
void f() {
    value box = Box("s");
    String s = box.item;
    value i = identity(1);
    value explicit = Box<Integer>(2);
}
`)
	assert.Empty(t, r.Diagnostics)
	pu := r.Unit("p/unit.ceylon")

	inv := specifier(t, pu, "box").(*tree.InvocationExpr)
	assert.Equal(t, "Box<T>", model.TypeString(r.Info.TypeOf(inv.Primary)))
	assert.Equal(t, "Box<String>", model.TypeString(r.Info.TypeOf(inv)))
	assert.NotEqual(t, model.TypeString(r.Info.TypeOf(inv.Primary)), model.TypeString(r.Info.TypeOf(inv)))

	assert.Equal(t, "Integer", model.TypeString(declType(t, r, pu, "i")))
	assert.Equal(t, "Box<Integer>", model.TypeString(declType(t, r, pu, "explicit")))
}

func TestInvocation_UninferredTypeArgument(t *testing.T) {
	r := checkUnit(t, `
class Holder<T>() {}
void f() {
    value h = Holder();
}
`)
	assert.Equal(t, []string{"could not infer type argument: T"}, messages(r.Diagnostics))
	assert.Equal(t, "Holder<T>", model.TypeString(declType(t, r, r.Unit("p/unit.ceylon"), "h")))
}

func TestInvocation_OptionalParameterInference(t *testing.T) {
	r := checkUnit(t, `
T orElse<T>(T? maybe, T other) {
    return other;
}
void f() {
    String? s = null;
    value v = orElse(s, "x");
}
`)
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "String", model.TypeString(declType(t, r, r.Unit("p/unit.ceylon"), "v")))
}

func TestExtendsArguments(t *testing.T) {
	r := checkUnit(t, `
class Base(Integer n) {}
class Good() extends Base(1) {}
class Bad() extends Base("one") {}
class Short() extends Base() {}
`)
	assert.ElementsMatch(t, []string{
		"argument not assignable to parameter type: n since String is not Integer",
		"no argument to parameter: n",
	}, messages(r.Diagnostics))
}

func TestGenericMembers(t *testing.T) {
	r := checkUnit(t, `
void f() {
    value entry = "k" -> 1;
    String k = entry.key;
    Integer v = entry.item;
    Integer wrong = entry.key;
}
`)
	assert.Equal(t, []string{
		"specifier expression not assignable to expected type: String is not Integer",
	}, messages(r.Diagnostics))
}

func TestOperators(t *testing.T) {
	r := checkUnit(t, `
void f() {
    Integer sum = 1 + 2 * 3 - 4 / 2 % 3;
    Float power = 2.0 ** 3.0;
    String text = "a" + "b";
    Boolean cmp = 1 < 2 && 3 >= 2 || !(1 == 2);
    Comparison order = 1 <=> 2;
    Boolean same = Box() === Box();
    Boolean within = 'q' in "abc";
    Integer bits = 1 | 2 & ~3 ^ 4;
    value range = 1..3;
    String shown = $sum;
    Integer negated = -sum;
    Integer bad = 1 + "s";
    Boolean worse = 1 && true;
    Boolean incomparable = "a" < 1;
}
class Box() {}
`)
	assert.ElementsMatch(t, []string{
		"must be of type: Integer",
		"must be of type: Boolean",
		"must be of type: String",
	}, messages(r.Diagnostics))
	assert.Equal(t, "Range<Integer>", model.TypeString(declType(t, r, r.Unit("p/unit.ceylon"), "range")))
}

func TestAssignment(t *testing.T) {
	r := checkUnit(t, `
void f() {
    variable Integer m = 1;
    m := 2;
    m += 3;
    m++;
    --m;
    Integer fixed = 1;
    fixed := 2;
    m := "s";
    1 := 2;
}
`)
	assert.ElementsMatch(t, []string{
		"value is not variable: fixed",
		"assigned expression not assignable to declared type: String is not Integer",
		"expression cannot be assigned",
	}, messages(r.Diagnostics))
}

// x ?: y has the type of y.  x must fit the optional form of y's type.
func TestDefaultOperator(t *testing.T) {
	r := checkUnit(t, `
void f() {
    String? maybe = null;
    Integer? count = null;
    String definite = maybe ?: "x";
    String? stillOptional = maybe ?: maybe;
    Integer i = count ?: 1;
    value mismatched = maybe ?: 1;
    String notOptional = "a" ?: "b";
}
`)
	assert.Equal(t, []string{
		"expression must be of type: Nothing|Integer",
		"expression must be of optional type",
	}, messages(r.Diagnostics))
	b := r.Context.Builtins
	pu := r.Unit("p/unit.ceylon")
	assert.True(t, model.Equal(b.IntegerType(), declType(t, r, pu, "mismatched")))
	assert.True(t, model.Equal(b.IntegerType(), r.Info.TypeOf(specifier(t, pu, "i"))))
	require.Len(t, r.Diagnostics, 2)
	for i, want := range [][2]int{{8, 24}, {9, 26}} {
		require.NotNil(t, r.Diagnostics[i].Pos)
		assert.Equal(t, want, [2]int{r.Diagnostics[i].Pos.Line, r.Diagnostics[i].Pos.Col})
	}
}

func TestIndex(t *testing.T) {
	r := checkUnit(t, `
void f() {
    String s = "abc";
    Character? c = s[0];
    value part = s[0..1];
    value tail = s[1...];
    Character? bad = s["x"];
    Integer? worse = 1[0];
}
`)
	assert.ElementsMatch(t, []string{
		"index not assignable to key type: String is not Integer",
		"receiver not of type: Correspondence",
	}, messages(r.Diagnostics))
	pu := r.Unit("p/unit.ceylon")
	assert.Equal(t, "Sequence<Character>", model.TypeString(declType(t, r, pu, "part")))
	assert.Equal(t, "Sequence<Character>", model.TypeString(declType(t, r, pu, "tail")))
}

func TestSequenceEnumeration(t *testing.T) {
	r := checkUnit(t, `
void f() {
    value ints = {1, 2, 3};
    value mixed = {1, "two"};
    Integer first = ints.first;
}
`)
	assert.Empty(t, r.Diagnostics)
	pu := r.Unit("p/unit.ceylon")
	assert.Equal(t, "Sequence<Integer>", model.TypeString(declType(t, r, pu, "ints")))
	mixed := declType(t, r, pu, "mixed").(*model.ProducedType)
	require.Len(t, mixed.Args, 1)
	assert.IsType(t, &model.UnionType{}, mixed.Args[0])
}

func TestMemberOperators(t *testing.T) {
	r := checkUnit(t, `
class Named() {
    shared String name = "n";
}
void f() {
    Named? maybe = null;
    value safe = maybe?.name;
    value names = {Named(), Named()}*.name;
    value bad = Named()?.name;
}
`)
	assert.ElementsMatch(t, []string{
		"receiver not of optional type",
	}, messages(r.Diagnostics))
	pu := r.Unit("p/unit.ceylon")
	b := r.Context.Builtins
	assert.True(t, model.Equal(b.Optional(b.StringType()), declType(t, r, pu, "safe")))
	assert.Equal(t, "Sequence<String>", model.TypeString(declType(t, r, pu, "names")))
}

func TestConditions(t *testing.T) {
	r := checkUnit(t, `
void f() {
    String? maybe = null;
    if (exists maybe) {
    }
    if (exists s = maybe) {
        Integer wrong = s;
    }
    if (1) {
    }
    if (exists 1) {
    }
    while (nonempty 2) {
    }
    Object o = "x";
    if (is String str = o) {
        String ok = str;
    } else if (is Integer o) {
    } else {
    }
}
`)
	assert.ElementsMatch(t, []string{
		"specifier expression not assignable to expected type: String is not Integer",
		"expression must be of type: Boolean",
		"expression must be of optional type",
		"expression must be of type: Container",
	}, messages(r.Diagnostics))
	pu := r.Unit("p/unit.ceylon")
	assert.Equal(t, "String", model.TypeString(declType(t, r, pu, "s")))
	assert.Equal(t, "String", model.TypeString(declType(t, r, pu, "str")))
}

func TestIterators(t *testing.T) {
	r := checkUnit(t, `
void f() {
    for (value c in "abc") {
        Character ch = c;
    }
    for (Integer i in {1, 2}) {
    } fail {
    }
    value pairs = {"a" -> 1, "b" -> 2};
    for (value k -> value v in pairs) {
        String key = k;
        Integer item = v;
    }
    for (value x in 1) {
    }
    for (value k -> value v in {1, 2}) {
    }
}
`)
	assert.ElementsMatch(t, []string{
		"expression must be of type: Iterable",
		"iterated element must be of type: Entry",
	}, messages(r.Diagnostics))
	assert.Equal(t, "Character", model.TypeString(declType(t, r, r.Unit("p/unit.ceylon"), "c")))
}

func TestReturns(t *testing.T) {
	r := checkUnit(t, `
Integer count() {
    return "x";
}
void nothing() {
    return 1;
}
String named() {
    return;
}
`)
	assert.ElementsMatch(t, []string{
		"returned expression not assignable to expected return type: String is not Integer",
		"void methods may not return a value",
		"non-void methods and getters must return a value",
	}, messages(r.Diagnostics))
}

func TestSelfReferences(t *testing.T) {
	r := checkUnit(t, `
class Outer() {
    shared Integer n = 1;
    class Inner() extends Object() {
        Integer viaOuter = outer.n;
        Outer self = outer;
    }
    Outer me = this;
    IdentifiableObject parent = super;
}
void f() {
    value t = this;
    value o = outer;
}
`)
	assert.ElementsMatch(t, []string{
		"this appears outside a class or interface",
		"outer appears outside a nested class or interface",
	}, messages(r.Diagnostics))
}

func TestGetterSetter(t *testing.T) {
	r := checkUnit(t, `
class Counter() {
    variable Integer count = 0;
    shared Integer current {
        return count;
    }
    assign current {
    }
    assign orphan {
    }
}
void f() {
    Counter c = Counter();
    c.current := 2;
}
`)
	assert.Equal(t, []string{"setter has no matching getter: orphan"}, messages(r.Diagnostics))
}

func TestUnresolvedReferences(t *testing.T) {
	r := checkUnit(t, `
void f() {
    value a = missing;
    value b = Missing();
    value c = "s".nope;
    a.other(1);
}
`)
	assert.Subset(t, messages(r.Diagnostics), []string{
		"could not determine target of base member reference: missing",
		"could not determine target of base type reference: Missing",
		"could not determine target of member reference: nope",
	})
	assert.NotContains(t, messages(r.Diagnostics), "receiving expression cannot be invoked")
}
