package domain

import "github.com/shopspring/decimal"

// DemoTransactions returns the demo dataset shown to a user on their
// first-ever login. A fresh slice is returned on every call.
func DemoTransactions() []Transaction {
	return []Transaction{
		// PF
		{ID: "1", Description: "Salário Mensal", Amount: decimal.NewFromInt(5000), Type: TypeIncome, Category: "Salário", Date: NewDate(2023, 10, 1), Context: ContextPersonal},
		{ID: "2", Description: "Aluguel Apartamento", Amount: decimal.NewFromInt(1500), Type: TypeExpense, Category: "Moradia", Date: NewDate(2023, 10, 5), Context: ContextPersonal},
		{ID: "3", Description: "Supermercado", Amount: decimal.RequireFromString("650.50"), Type: TypeExpense, Category: "Alimentação", Date: NewDate(2023, 10, 8), Context: ContextPersonal},

		// PJ
		{ID: "4", Description: "Projeto Consultoria Tech", Amount: decimal.NewFromInt(8500), Type: TypeIncome, Category: "Venda de Serviços", Date: NewDate(2023, 10, 15), Context: ContextBusiness},
		{ID: "5", Description: "Licença Adobe/Figma", Amount: decimal.RequireFromString("250.00"), Type: TypeExpense, Category: "Software/SaaS", Date: NewDate(2023, 10, 18), Context: ContextBusiness},
		{ID: "6", Description: "DAS - Simples Nacional", Amount: decimal.RequireFromString("510.00"), Type: TypeExpense, Category: "Impostos", Date: NewDate(2023, 10, 20), Context: ContextBusiness},
	}
}
