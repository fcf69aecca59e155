package registry

func site(id, name, color, siteURL, domain string, markers, imageHosts []string, category bool) *Site {
	s := &Site{
		ID:             id,
		Name:           name,
		Color:          color,
		SiteURL:        siteURL,
		ProductPath:    "/" + id + "/scrape-product",
		Domain:         domain,
		ProductMarkers: markers,
		ImageHosts:     imageHosts,
	}
	if category {
		s.CategoryPath = "/" + id + "/scrape-category"
	}
	return s
}

var sites = []*Site{
	func() *Site {
		s := site("amazon", "Amazon", "#FF9900", "https://www.amazon.in", "amazon.",
			[]string{"/dp/", "/gp/product/"}, []string{"media-amazon.com", "ssl-images-amazon.com"}, true)
		s.Fields = FieldMap{
			FieldSpecifications: {"technicalDetails", "productDetails"},
			FieldOffers:         {"offers", "bankOffers"},
		}
		return s
	}(),
	site("flipkart", "Flipkart", "#2874F0", "https://www.flipkart.com", "flipkart.com",
		[]string{"/p/"}, []string{"flixcart.com"}, true),
	func() *Site {
		s := site("ikea", "IKEA", "#0058A3", "https://www.ikea.com/in/en/", "ikea.com",
			[]string{"/p/"}, []string{"ikea.com"}, true)
		s.ProductPath = "/ikea/scrape"
		s.Fields = FieldMap{
			FieldName:           {"name", "productName"},
			FieldPrice:          {"price.current", "price"},
			FieldOriginalPrice:  {"price.previous"},
			FieldDescription:    {"summary", "description"},
			FieldSpecifications: {"measurements", "specifications"},
		}
		return s
	}(),
	site("myntra", "Myntra", "#FF3F6C", "https://www.myntra.com", "myntra.com",
		[]string{"/buy"}, []string{"myntassets.com"}, true),
	site("meesho", "Meesho", "#9F2089", "https://www.meesho.com", "meesho.com",
		[]string{"/p/"}, []string{"meesho.com"}, true),
	site("ajio", "AJIO", "#2C4152", "https://www.ajio.com", "ajio.com",
		[]string{"/p/"}, []string{"ajio.com"}, true),
	site("nykaa", "Nykaa", "#FC2779", "https://www.nykaa.com", "nykaa.com",
		[]string{"/p/"}, []string{"nykaa.com"}, true),
	site("snapdeal", "Snapdeal", "#E40046", "https://www.snapdeal.com", "snapdeal.com",
		[]string{"/product/"}, []string{"sdlcdn.com"}, true),
	site("tatacliq", "Tata CLiQ", "#3A3A3A", "https://www.tatacliq.com", "tatacliq.com",
		[]string{"/p-"}, []string{"tatacliq.com"}, true),
	site("croma", "Croma", "#12DAA8", "https://www.croma.com", "croma.com",
		[]string{"/p/"}, []string{"croma.com"}, true),
	site("reliancedigital", "Reliance Digital", "#E42529", "https://www.reliancedigital.in", "reliancedigital.in",
		[]string{"/p/", "/product/"}, []string{"reliancedigital.in"}, true),
	site("jiomart", "JioMart", "#0078AD", "https://www.jiomart.com", "jiomart.com",
		[]string{"/p/"}, []string{"jiomart.com"}, true),
	site("bigbasket", "BigBasket", "#84C225", "https://www.bigbasket.com", "bigbasket.com",
		[]string{"/pd/"}, []string{"bbassets.com"}, true),
	site("blinkit", "Blinkit", "#F8CB46", "https://blinkit.com", "blinkit.com",
		[]string{"/prn/"}, []string{"grofers.com", "blinkit.com"}, false),
	site("zepto", "Zepto", "#5E1ABF", "https://www.zeptonow.com", "zeptonow.com",
		[]string{"/pn/"}, []string{"zeptonow.com"}, false),
	site("pepperfry", "Pepperfry", "#F16521", "https://www.pepperfry.com", "pepperfry.com",
		[]string{"/product/", ".html"}, []string{"pepperfry.com"}, true),
	site("urbanladder", "Urban Ladder", "#E25B26", "https://www.urbanladder.com", "urbanladder.com",
		[]string{"/products/"}, []string{"urbanladder.com"}, true),
	site("firstcry", "FirstCry", "#FF7043", "https://www.firstcry.com", "firstcry.com",
		[]string{"/product-detail"}, []string{"firstcry.com"}, true),
	site("lenskart", "Lenskart", "#10B6C5", "https://www.lenskart.com", "lenskart.com",
		[]string{".html"}, []string{"lenskart.com"}, true),
	site("decathlon", "Decathlon", "#0082C3", "https://www.decathlon.in", "decathlon.in",
		[]string{"/p/"}, []string{"decathlon.in", "decathlon.com"}, true),
	site("hm", "H&M", "#E50010", "https://www2.hm.com/en_in/index.html", "hm.com",
		[]string{"productpage"}, []string{"hm.com"}, true),
	site("zara", "Zara", "#111111", "https://www.zara.com/in/", "zara.com",
		[]string{"-p0", "-p1", "-p2", "-p3", "-p4", "-p5", "-p6", "-p7", "-p8", "-p9"}, []string{"zara.net"}, true),
	site("shoppersstop", "Shoppers Stop", "#333333", "https://www.shoppersstop.com", "shoppersstop.com",
		[]string{"/p-"}, []string{"shoppersstop.com"}, true),
	site("lifestyle", "Lifestyle", "#F58220", "https://www.lifestylestores.com", "lifestylestores.com",
		[]string{"/p/"}, []string{"lifestylestores.com"}, true),
	site("bewakoof", "Bewakoof", "#FDD835", "https://www.bewakoof.com", "bewakoof.com",
		[]string{"/p/"}, []string{"bewakoof.com"}, true),
	site("westside", "Westside", "#2B2B2B", "https://www.westside.com", "westside.com",
		[]string{"/products/"}, []string{"westside.com", "shopify.com"}, true),
}
