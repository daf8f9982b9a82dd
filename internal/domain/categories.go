package domain

// Categories is the allowed category list per (context, type). Validation and
// chart grouping both key on these exact strings.
var Categories = map[Context]map[TransactionType][]string{
	ContextPersonal: {
		TypeIncome:  {"Salário", "Freelance", "Investimentos", "Vendas", "Presentes", "Outros"},
		TypeExpense: {"Moradia", "Alimentação", "Transporte", "Lazer", "Saúde", "Educação", "Compras", "Assinaturas", "Outros"},
	},
	ContextBusiness: {
		TypeIncome:  {"Venda de Serviços", "Venda de Produtos", "Investimentos", "Empréstimos", "Outros"},
		TypeExpense: {"Fornecedores", "Pessoal/Folha", "Impostos", "Aluguel Comercial", "Marketing", "Software/SaaS", "Manutenção", "Despesas Administrativas", "Outros"},
	},
}

// CategoriesFor returns a copy of the allowed categories for ctx and typ.
func CategoriesFor(ctx Context, typ TransactionType) []string {
	list := Categories[ctx][typ]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// IsValidCategory reports whether category is allowed for ctx and typ.
func IsValidCategory(ctx Context, typ TransactionType, category string) bool {
	for _, c := range Categories[ctx][typ] {
		if c == category {
			return true
		}
	}
	return false
}
