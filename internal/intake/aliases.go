package intake

// AliasTable lists, per canonical field, the form question titles that may
// carry it inside a namedValues payload. Earlier aliases win.
type AliasTable struct {
	Email     []string
	Phone     []string
	Name      []string
	Timestamp []string
}

// DefaultAliases covers French and English Google Forms exports. French
// titles come first because the production forms are French.
var DefaultAliases = AliasTable{
	Email: []string{
		"Adresse e-mail",
		"Adresse email",
		"E-mail",
		"Email",
		"Email address",
	},
	Phone: []string{
		"Téléphone",
		"Telephone",
		"Numéro de téléphone",
		"Phone",
		"Phone number",
	},
	Name: []string{
		"Nom",
		"Nom complet",
		"Name",
		"Full name",
	},
	Timestamp: []string{
		"Horodateur",
		"Timestamp",
	},
}
