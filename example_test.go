package tessera_test

import (
	"fmt"

	"github.com/tessera-db/tessera"
	"github.com/tessera-db/tessera/core"
	"github.com/tessera-db/tessera/table"
)

func ExampleQuery() {
	tbl := table.New("people")
	name := tbl.AddColumn("name", core.TypeString)
	age := tbl.AddColumn("age", core.TypeInt, core.AttrNullable)

	for _, p := range []struct {
		name string
		age  int64
	}{{"ann", 30}, {"bob", 40}, {"anna", 40}, {"bert", 25}} {
		obj := tbl.CreateObject()
		if err := obj.Set(name, core.String(p.name)); err != nil {
			panic(err)
		}
		if err := obj.Set(age, core.Int(p.age)); err != nil {
			panic(err)
		}
	}

	q := tessera.NewQuery(tbl).
		BeginsWith(name, "an", false).
		Greater(age, core.Int(20))

	desc, _ := q.GetDescription()
	fmt.Println(desc)

	view, _ := q.FindAll(0, -1, -1)
	for i := 0; i < view.Size(); i++ {
		fmt.Println(view.GetObject(i).Get(name).S)
	}

	count, _ := q.Count(-1)
	fmt.Println("count:", count)

	// Output:
	// name BEGINSWITH[c] "an" and age > 20
	// ann
	// anna
	// count: 2
}

func ExampleQuery_group() {
	tbl := table.New("t")
	a := tbl.AddColumn("a", core.TypeInt)
	b := tbl.AddColumn("b", core.TypeInt)
	for _, r := range [][2]int64{{1, 0}, {0, 2}, {0, 0}} {
		obj := tbl.CreateObject()
		if err := obj.Set(a, core.Int(r[0])); err != nil {
			panic(err)
		}
		if err := obj.Set(b, core.Int(r[1])); err != nil {
			panic(err)
		}
	}

	q := tessera.NewQuery(tbl).
		Group().
		Equal(a, core.Int(1)).
		Or().
		Equal(b, core.Int(2)).
		EndGroup()

	count, _ := q.Count(-1)
	fmt.Println(count)

	// Output:
	// 2
}
