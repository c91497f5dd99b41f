package fakeapi

import "github.com/jrsteele09/imvestor-client/dto"

var skills = []dto.Skill{
	{ID: 1, Description: "Software Development"},
	{ID: 2, Description: "Marketing"},
	{ID: 3, Description: "Sales"},
	{ID: 4, Description: "Finance"},
	{ID: 5, Description: "Product Management"},
	{ID: 6, Description: "Design"},
}

var areas = []dto.Area{
	{ID: 1, Name: "Fintech"},
	{ID: 2, Name: "Healthtech"},
	{ID: 3, Name: "Edtech"},
	{ID: 4, Name: "Agritech"},
	{ID: 5, Name: "E-commerce"},
	{ID: 6, Name: "Clean Energy"},
}

var countries = []dto.Country{
	{ID: 1, Name: "Brazil"},
	{ID: 2, Name: "Italy"},
	{ID: 3, Name: "Portugal"},
	{ID: 4, Name: "United States"},
}

var states = map[int][]string{
	1: {"Minas Gerais", "Rio de Janeiro", "São Paulo"},
	2: {"Lazio", "Lombardia", "Toscana"},
	3: {"Lisboa", "Porto"},
	4: {"California", "New York", "Texas"},
}
