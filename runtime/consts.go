package runtime

// Well-known identifiers the interpreter and instance-creation logic look
// up by fixed name, interned once at package init.
var (
	identCall        = StringToIdentifier("_call")
	identConstructor = StringToIdentifier("_constructor")
)
