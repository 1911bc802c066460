package roles

// Screen describes one client screen and the API it is backed by.
type Screen struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Endpoint string `json:"endpoint,omitempty"`
}

// ScreenSet is what a client renders for a role. Waiting is set while the
// identity is unresolved; Screens is empty in that case.
type ScreenSet struct {
	Role    Role     `json:"role"`
	Waiting bool     `json:"waiting"`
	Screens []Screen `json:"screens"`
}

var profileScreen = Screen{Name: "profile", Title: "Meu Perfil", Endpoint: "/api/v1/profile"}

var screenTable = map[Role][]Screen{
	RoleUnresolved: nil,
	RoleAdmin: {
		{Name: "store_management", Title: "Painel Admin", Endpoint: "/api/v1/admin/stores"},
	},
	RoleCustomer: {
		{Name: "marketplace", Title: "Restaurantes", Endpoint: "/api/v1/stores"},
		{Name: "menu", Title: "Cardápio", Endpoint: "/api/v1/stores/{storeId}/products"},
		{Name: "cart", Title: "Carrinho", Endpoint: "/api/v1/cart"},
		{Name: "checkout", Title: "Finalizar Pedido", Endpoint: "/api/v1/cart/checkout"},
	},
	RoleOwner: {
		{Name: "products", Title: "Produtos", Endpoint: "/api/v1/stores/me/products"},
		{Name: "categories", Title: "Categorias", Endpoint: "/api/v1/stores/me/categories"},
		{Name: "store_settings", Title: "Configurar Loja", Endpoint: "/api/v1/stores/me"},
	},
}

// ScreensFor returns the screen set of r. Anything other than the three known
// roles yields the waiting state.
func ScreensFor(r Role) ScreenSet {
	screens, ok := screenTable[r]
	if !ok || !r.Resolved() {
		return ScreenSet{Role: RoleUnresolved, Waiting: true, Screens: []Screen{}}
	}
	out := make([]Screen, 0, len(screens)+1)
	out = append(out, screens...)
	out = append(out, profileScreen)
	return ScreenSet{Role: r, Screens: out}
}

// Route resolves the identity and returns its screen set.
func Route(identity *Identity) ScreenSet {
	return ScreensFor(identity.Role())
}
