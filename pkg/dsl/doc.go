/*
Package dsl provides the fluent builder used to declare a turning model.

States are declared with Define, graph roots with Initialize, and moves
between state combinations with Turn (in-place) or Spawn (child context).
Build freezes the declarations into a domain.Model plus the handler tables
the runtime invokes.

Example usage:

	b := dsl.New[*Browser]()

	b.Define("page:home").Test(expectTitle("Home"))
	b.Define("page:login").Test(expectTitle("Login"))

	b.Initialize("page:home").By("opening the site", openSite)

	b.Turn([]string{"page:home"}).
		To("page:login").
		Alias("open-login").
		By("clicking login", clickLogin)

	def, err := b.Build()
*/
package dsl
