package xmlfeed

// Element names of the upstream document:
//
//	<products>
//	  <product>
//	    <id/><title/><price/><sale_price/><description/><brand/>
//	    <imageLink/><product_type/><sale_price_effective_date/>
//	  </product>
//	</products>
const (
	elemContainer  = "products"
	elemItem       = "product"
	elemID         = "id"
	elemTitle      = "title"
	elemPrice      = "price"
	elemSalePrice  = "sale_price"
	elemDesc       = "description"
	elemBrand      = "brand"
	elemImage      = "imageLink"
	elemCategory   = "product_type"
	elemSaleWindow = "sale_price_effective_date"
)
